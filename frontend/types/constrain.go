package types

import (
	"slices"
	"strconv"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
)

// sub decides s <: t for normalised s and t on the path h
func (a *TypeAnalyzer) sub(s, t Type, h SubtypeHistory) ConstraintFormula {
	if Equal(s, t) {
		return True
	}
	if _, ok := s.(BottomType); ok {
		return True
	}
	if _, ok := t.(AnyType); ok {
		return True
	}

	tr := newVarTranslator(s, t)
	canonicalSub, canonicalSuper := tr.canonicalizeVars(s), tr.canonicalizeVars(t)
	// static parameters mean what this scope's bounds and where clauses say,
	// so their answers are not taken from an enclosing scope
	lookup := a.cache.get
	if mentionsParam(s) || mentionsParam(t) {
		lookup = a.cache.getLocal
	}
	if cached, ok := lookup(canonicalSub, canonicalSuper); ok {
		return rehome(tr.revertFormula(cached), h)
	}

	if h.Size() > a.opts.MaxDepth || h.Expansions() > a.opts.MaxExpansions {
		a.truncations++
		a.logger.Debug("subtype search truncated", "sub", s, "super", t, "history", h)
		return False
	}
	if h.Contains(s, t) {
		a.truncations++
		a.logger.Debug("subtype cycle", "sub", s, "super", t)
		return False
	}

	truncations := a.truncations
	res := a.dispatch(s, t, h.Extend(s, t))
	// existential variables of hidden parameters are private to this query
	if (a.truncations == truncations || a.opts.CacheTruncated) && tr.covers(res) {
		a.cache.put(canonicalSub, canonicalSuper, tr.canonicalizeFormula(res))
	}
	return res
}

// rehome makes a formula taken from the cache continue the path h
func rehome(f ConstraintFormula, h SubtypeHistory) ConstraintFormula {
	if simple, ok := f.(SimpleFormula); ok {
		return simple.withHistory(h)
	}
	return f
}

func exists(ts []Type, f func(Type) ConstraintFormula) ConstraintFormula {
	result := False
	for _, t := range ts {
		result = result.Or(f(t))
		if result.IsTrue() {
			return result
		}
	}
	return result
}

func all(ts []Type, f func(Type) ConstraintFormula) ConstraintFormula {
	result := True
	for _, t := range ts {
		result = result.And(f(t))
		if result.IsFalse() {
			return result
		}
	}
	return result
}

func (a *TypeAnalyzer) dispatch(s, t Type, h SubtypeHistory) ConstraintFormula {
	subOf := func(super Type) func(Type) ConstraintFormula {
		return func(sub Type) ConstraintFormula { return a.sub(sub, super, h) }
	}
	superOf := func(sub Type) func(Type) ConstraintFormula {
		return func(super Type) ConstraintFormula { return a.sub(sub, super, h) }
	}

	sVar, sIsVar := s.(InferenceVar)
	tVar, tIsVar := t.(InferenceVar)
	switch {
	case sIsVar && tIsVar:
		return upperBound(sVar, t, h).And(lowerBound(tVar, s, h))
	case sIsVar:
		return upperBound(sVar, t, h)
	case tIsVar:
		return lowerBound(tVar, s, h)
	}

	if u, ok := s.(UnionType); ok {
		return all(u.Elements, subOf(t))
	}
	if i, ok := t.(IntersectionType); ok {
		return all(i.Elements, superOf(s))
	}
	if i, ok := s.(IntersectionType); ok {
		return exists(i.Elements, subOf(t))
	}

	_, sIsParam := s.(VarType)
	_, tIsParam := t.(VarType)
	if sIsParam || tIsParam {
		viaBounds := a.subVar(s, t, h)
		if u, ok := t.(UnionType); ok && !viaBounds.IsTrue() {
			return viaBounds.Or(exists(u.Elements, superOf(s)))
		}
		return viaBounds
	}

	if u, ok := t.(UnionType); ok {
		return exists(u.Elements, superOf(s))
	}

	if fix, ok := s.(FixedPointType); ok {
		return a.sub(fix.unfold(), t, h)
	}
	if fix, ok := t.(FixedPointType); ok {
		return a.sub(s, fix.unfold(), h)
	}

	return a.subStructural(s, t, h)
}

// subStructural compares two atomic types by their constructors
func (a *TypeAnalyzer) subStructural(s, t Type, h SubtypeHistory) ConstraintFormula {
	for _, typ := range []Type{s, t} {
		switch typ.(type) {
		case ArrayType, MatrixType:
			a.abort(ilerr.New(ilerr.NewNotNormalized{Type: typ.String()}))
		}
	}

	switch s := s.(type) {
	case TraitType:
		switch t := t.(type) {
		case TraitType:
			return a.subTrait(s, t, h)
		case TupleType:
			return a.subTuple(Tuple(s), t, h)
		}
	case TupleType:
		if t, ok := t.(TupleType); ok {
			return a.subTuple(s, t, h)
		}
	case VoidType:
		if t, ok := t.(TupleType); ok {
			return a.subTuple(Tuple(), t, h)
		}
	case ArrowType:
		switch t := t.(type) {
		case ArrowType:
			return a.subArrow(s, t, h)
		case TupleType:
			return a.subTuple(Tuple(s), t, h)
		}
	}
	return False
}

func (a *TypeAnalyzer) subTrait(s, t TraitType, h SubtypeHistory) ConstraintFormula {
	if t.Name == ObjectName {
		return True
	}
	index := a.mustTraitIndex(s)
	if s.Name == t.Name {
		return a.staticArgsEquivalent(index, s, t, h)
	}

	bindings := bindStatic(index.Params, s.Args)
	for _, hidden := range index.HiddenParams {
		if hidden.Kind == KindType {
			bindings[hidden.Name] = TypeArg{Type: a.NewInferenceVar()}
		}
	}
	expanded := h.Expand()
	result := False
	for _, clause := range index.Extends {
		super := a.normalizeIn(substStatic(clause.Super, bindings), expanded)
		edge := a.whereHolds(slices.Concat(index.Where, clause.Where), bindings, expanded)
		if edge.IsFalse() {
			continue
		}
		edge = edge.And(a.sub(super, t, expanded))
		a.logger.Debug("expanded supertype", "sub", s, "via", super, "super", t, "result", edge)
		result = result.Or(edge)
		if result.IsTrue() {
			return result
		}
	}
	return result
}

// whereHolds is the conjunction of the where clause constraints, instantiated by bindings
func (a *TypeAnalyzer) whereHolds(where []TypeConstraint, bindings map[string]StaticArg, h SubtypeHistory) ConstraintFormula {
	result := True
	for _, c := range where {
		left := a.normalizeIn(substStatic(c.Left, bindings), h)
		right := a.normalizeIn(substStatic(c.Right, bindings), h)
		result = result.And(a.sub(left, right, h))
		if c.Kind == ConstraintEquals && !result.IsFalse() {
			result = result.And(a.sub(right, left, h))
		}
		if result.IsFalse() {
			return result
		}
	}
	return result
}

func (a *TypeAnalyzer) staticArgsEquivalent(index *TraitIndex, s, t TraitType, h SubtypeHistory) ConstraintFormula {
	if len(s.Args) != len(t.Args) {
		a.abort(ilerr.New(ilerr.NewStaticArgCount{Cons: t.Name, Want: len(s.Args), Got: len(t.Args)}))
	}
	result := True
	for i := range s.Args {
		result = result.And(a.staticArgEquivalent(index, i, s.Args[i], t.Args[i], h))
		if result.IsFalse() {
			return result
		}
	}
	return result
}

func (a *TypeAnalyzer) staticArgEquivalent(index *TraitIndex, i int, x, y StaticArg, h SubtypeHistory) ConstraintFormula {
	if x.Kind() != y.Kind() {
		param := strconv.Itoa(i)
		if i < len(index.Params) {
			param = index.Params[i].Name
		}
		a.abort(ilerr.New(ilerr.NewStaticArgKind{
			Cons:  index.Name,
			Param: param,
			Want:  x.Kind().String(),
			Got:   y.Kind().String(),
		}))
	}
	switch x := x.(type) {
	case TypeArg:
		y := y.(TypeArg)
		forward := a.sub(x.Type, y.Type, h)
		if forward.IsFalse() {
			return forward
		}
		return forward.And(a.sub(y.Type, x.Type, h))
	case DimArg:
		return a.dimEquivalent(x.Expr, y.(DimArg).Expr)
	case UnitArg:
		return a.dimEquivalent(x.Expr, y.(UnitArg).Expr)
	}
	return formulaOf(x.Hash() == y.Hash())
}

func (a *TypeAnalyzer) dimEquivalent(x, y DimExpr) ConstraintFormula {
	xRef, xOk := x.(DimRef)
	yRef, yOk := y.(DimRef)
	if !xOk || !yOk {
		a.abort(ilerr.New(ilerr.NewNotYetImplemented{What: "comparing dimension expressions " + x.String() + " and " + y.String()}))
	}
	return formulaOf(xRef.Name == yRef.Name)
}

// subVar decides subtyping involving static type parameters through their declared bounds
func (a *TypeAnalyzer) subVar(s, t Type, h SubtypeHistory) ConstraintFormula {
	result := False
	if param, ok := t.(VarType); ok {
		result = exists(a.lowerParamBounds(param.Name, h), func(lower Type) ConstraintFormula {
			return a.sub(s, lower, h)
		})
		if result.IsTrue() {
			return result
		}
	}
	if param, ok := s.(VarType); ok {
		result = result.Or(exists(a.upperParamBounds(param.Name, h), func(upper Type) ConstraintFormula {
			return a.sub(upper, t, h)
		}))
	}
	return result
}

// upperParamBounds are the declared bounds of a static parameter and the
// where clause constraints on it. A parameter without any is bounded by Object.
func (a *TypeAnalyzer) upperParamBounds(name string, h SubtypeHistory) []Type {
	var bounds []Type
	if param, ok := a.env.StaticParam(name); ok {
		bounds = append(bounds, param.Extends...)
	}
	self := VarType{Name: name}
	for _, c := range a.where {
		if Equal(c.Left, self) {
			bounds = append(bounds, c.Right)
		} else if c.Kind == ConstraintEquals && Equal(c.Right, self) {
			bounds = append(bounds, c.Left)
		}
	}
	if len(bounds) == 0 {
		return []Type{ObjectType}
	}
	return mapTypes(bounds, func(t Type) Type { return a.normalizeIn(t, h) })
}

// lowerParamBounds are the types the where clauses put below a static parameter
func (a *TypeAnalyzer) lowerParamBounds(name string, h SubtypeHistory) []Type {
	var bounds []Type
	self := VarType{Name: name}
	for _, c := range a.where {
		if Equal(c.Right, self) {
			bounds = append(bounds, c.Left)
		} else if c.Kind == ConstraintEquals && Equal(c.Left, self) {
			bounds = append(bounds, c.Right)
		}
	}
	return mapTypes(bounds, func(t Type) Type { return a.normalizeIn(t, h) })
}

// subTuple compares tuples slot by slot, repeating varargs to line the slots up
func (a *TypeAnalyzer) subTuple(s, t TupleType, h SubtypeHistory) ConstraintFormula {
	if len(s.Keywords) != len(t.Keywords) {
		return False
	}
	result := True
	for i, k := range s.Keywords {
		if t.Keywords[i].Name != k.Name {
			return False
		}
		result = result.And(a.sub(k.Type, t.Keywords[i].Type, h))
		if result.IsFalse() {
			return result
		}
	}

	var pairs [][2]Type
	switch {
	case s.VarArgs == nil && t.VarArgs == nil:
		if len(s.Elements) != len(t.Elements) {
			return False
		}
		for i := range s.Elements {
			pairs = append(pairs, [2]Type{s.Elements[i], t.Elements[i]})
		}
	case s.VarArgs == nil:
		if len(s.Elements) < len(t.Elements) {
			return False
		}
		for i, elem := range s.Elements {
			pairs = append(pairs, [2]Type{elem, slotOrVarArgs(t, i)})
		}
	case t.VarArgs == nil:
		return False
	default:
		for i := range max(len(s.Elements), len(t.Elements)) {
			pairs = append(pairs, [2]Type{slotOrVarArgs(s, i), slotOrVarArgs(t, i)})
		}
		pairs = append(pairs, [2]Type{s.VarArgs, t.VarArgs})
	}
	for _, pair := range pairs {
		result = result.And(a.sub(pair[0], pair[1], h))
		if result.IsFalse() {
			return result
		}
	}
	return result
}

func slotOrVarArgs(t TupleType, i int) Type {
	if i < len(t.Elements) {
		return t.Elements[i]
	}
	return t.VarArgs
}

func (a *TypeAnalyzer) subArrow(s, t ArrowType, h SubtypeHistory) ConstraintFormula {
	if !slices.EqualFunc(s.StaticParams, t.StaticParams, func(p, q StaticParam) bool {
		return p.Name == q.Name && p.Kind == q.Kind
	}) {
		return False
	}
	result := a.sub(t.Domain, s.Domain, h)
	if result.IsFalse() {
		return result
	}
	result = result.And(a.sub(s.Range, t.Range, h))
	if result.IsFalse() {
		return result
	}
	return result.And(a.subEffect(s.Effect, t.Effect, h))
}

// subEffect holds when every exception s throws is below one t throws, and s does io only if t does
func (a *TypeAnalyzer) subEffect(s, t Effect, h SubtypeHistory) ConstraintFormula {
	if s.IO && !t.IO {
		return False
	}
	return all(s.Throws, func(thrown Type) ConstraintFormula {
		return exists(t.Throws, func(allowed Type) ConstraintFormula {
			return a.sub(thrown, allowed, h)
		})
	})
}
