package types

import (
	"maps"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Substitution maps inference variables to the types replacing them
type Substitution map[InferenceVar]Type

// rewrite applies f top-down: where f returns ok the result replaces the
// whole subtree, otherwise rewrite recurses into the children
func rewrite(t Type, f func(Type) (Type, bool)) Type {
	if replaced, ok := f(t); ok {
		return replaced
	}
	return t.doMap(func(child Type) Type {
		return rewrite(child, f)
	})
}

// substVars replaces the inference variables of t according to sigma.
// Fixed-point binders shadow sigma inside their body.
func substVars(t Type, sigma Substitution) Type {
	if len(sigma) == 0 {
		return t
	}
	return rewrite(t, func(t Type) (Type, bool) {
		switch t := t.(type) {
		case InferenceVar:
			if replacement, ok := sigma[t]; ok {
				return replacement, true
			}
			return t, true
		case FixedPointType:
			if _, shadowed := sigma[t.Binder]; shadowed {
				inner := maps.Clone(sigma)
				delete(inner, t.Binder)
				return FixedPointType{Binder: t.Binder, Body: substVars(t.Body, inner)}, true
			}
		}
		return nil, false
	})
}

// substStatic instantiates static parameters by name
func substStatic(t Type, args map[string]StaticArg) Type {
	if len(args) == 0 {
		return t
	}
	return rewrite(t, func(t Type) (Type, bool) {
		switch t := t.(type) {
		case VarType:
			if arg, ok := args[t.Name].(TypeArg); ok {
				return arg.Type, true
			}
			return t, true
		case TraitType:
			substituted := make([]StaticArg, len(t.Args))
			for i, arg := range t.Args {
				substituted[i] = substStaticArg(arg, args)
			}
			return TraitType{Name: t.Name, Args: substituted}, true
		case ArrowType:
			if !slices.ContainsFunc(t.StaticParams, func(p StaticParam) bool { _, ok := args[p.Name]; return ok }) {
				return nil, false
			}
			inner := maps.Clone(args)
			for _, p := range t.StaticParams {
				delete(inner, p.Name)
			}
			return t.doMap(func(child Type) Type { return substStatic(child, inner) }), true
		case ArrayType:
			return ArrayType{Elem: substStatic(t.Elem, args), Extents: substExtents(t.Extents, args)}, true
		case MatrixType:
			return MatrixType{Elem: substStatic(t.Elem, args), Extents: substExtents(t.Extents, args)}, true
		}
		return nil, false
	})
}

func substExtents(extents []ExtentRange, args map[string]StaticArg) []ExtentRange {
	substituted := make([]ExtentRange, len(extents))
	for i, e := range extents {
		if e.Base != nil {
			substituted[i].Base = substStaticArg(e.Base, args)
		}
		if e.Size != nil {
			substituted[i].Size = substStaticArg(e.Size, args)
		}
	}
	return substituted
}

func substStaticArg(arg StaticArg, args map[string]StaticArg) StaticArg {
	switch arg := arg.(type) {
	case TypeArg:
		return TypeArg{Type: substStatic(arg.Type, args)}
	case IntArg:
		if replacement, ok := args[arg.Name].(IntArg); ok && arg.Name != "" {
			return replacement
		}
	case BoolArg:
		if replacement, ok := args[arg.Name].(BoolArg); ok && arg.Name != "" {
			return replacement
		}
	case OpArg:
		if replacement, ok := args[arg.Name].(OpArg); ok {
			return replacement
		}
	case DimArg:
		return DimArg{Expr: substDim(arg.Expr, args)}
	case UnitArg:
		return UnitArg{Expr: substDim(arg.Expr, args)}
	}
	return arg
}

func substDim(expr DimExpr, args map[string]StaticArg) DimExpr {
	switch expr := expr.(type) {
	case DimRef:
		switch replacement := args[expr.Name].(type) {
		case DimArg:
			return replacement.Expr
		case UnitArg:
			return replacement.Expr
		}
	case DimOp:
		return DimOp{Op: expr.Op, Left: substDim(expr.Left, args), Right: substDim(expr.Right, args)}
	}
	return expr
}

// inferenceVars lists the free inference variables of t in order of first occurrence
func inferenceVars(t Type) []InferenceVar {
	seen := set.New[InferenceVar](0)
	var found []InferenceVar
	var visit func(t Type, bound *set.Set[InferenceVar])
	visit = func(t Type, bound *set.Set[InferenceVar]) {
		switch t := t.(type) {
		case InferenceVar:
			if !bound.Contains(t) && seen.Insert(t) {
				found = append(found, t)
			}
			return
		case FixedPointType:
			inner := bound.Copy()
			inner.Insert(t.Binder)
			visit(t.Body, inner)
			return
		}
		for child := range t.children() {
			visit(child, bound)
		}
	}
	visit(t, set.New[InferenceVar](0))
	return found
}

// mentions reports whether v occurs free in t
func mentions(t Type, v InferenceVar) bool {
	return slices.Contains(inferenceVars(t), v)
}

// mentionsParam reports whether a static type parameter occurs in t
func mentionsParam(t Type) bool {
	if _, ok := t.(VarType); ok {
		return true
	}
	for child := range t.children() {
		if mentionsParam(child) {
			return true
		}
	}
	return false
}
