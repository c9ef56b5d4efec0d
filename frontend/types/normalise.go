package types

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
)

type typeNormaliser struct {
	*slog.Logger
	*TypeAnalyzer
	// history is the subtype path the normalisation is part of, used to
	// eliminate subsumed elements
	history SubtypeHistory
	// expanding holds the aliases being expanded
	expanding map[string]bool
}

func (a *TypeAnalyzer) normalize(t Type) Type {
	return a.normalizeIn(t, a.newHistory())
}

func (a *TypeAnalyzer) normalizeIn(t Type, h SubtypeHistory) (res Type) {
	n := typeNormaliser{
		Logger:       a.logger.With("section", "analyzer.normalise"),
		TypeAnalyzer: a,
		history:      h,
		expanding:    map[string]bool{},
	}
	defer func() {
		n.Debug("normalised type", "type", t, "result", res)
	}()
	return n.normalise(t)
}

func (n typeNormaliser) normalise(t Type) Type {
	switch t := t.(type) {
	case AnyType, BottomType, VoidType, VarType, InferenceVar:
		return t
	case TraitType:
		return n.normaliseTrait(t)
	case ArrayType:
		return n.normaliseTrait(n.desugarArray(t))
	case MatrixType:
		return n.normaliseTrait(n.desugarMatrix(t))
	case TupleType:
		return n.normaliseTuple(t)
	case ArrowType:
		return n.normaliseArrow(t)
	case UnionType:
		return n.makeUnion(mapTypes(t.Elements, n.normalise), n.history)
	case IntersectionType:
		return n.makeIntersection(mapTypes(t.Elements, n.normalise), n.history)
	case FixedPointType:
		body := n.normalise(t.Body)
		if !mentions(body, t.Binder) {
			return body
		}
		return FixedPointType{Binder: t.Binder, Body: body}
	}
	panic(errors.Errorf("unexpected type %T", t))
}

func (n typeNormaliser) normaliseTrait(t TraitType) Type {
	index, ok := n.typeCons(t.Name)
	if !ok {
		n.abort(ilerr.New(ilerr.NewUnknownType{Name: t.Name}))
	}
	params := index.StaticParams()
	if len(params) != len(t.Args) {
		n.abort(ilerr.New(ilerr.NewStaticArgCount{Cons: t.Name, Want: len(params), Got: len(t.Args)}))
	}
	args := make([]StaticArg, len(t.Args))
	for i, arg := range t.Args {
		arg = coerceStaticArg(params[i].Kind, arg)
		if !params[i].Kind.accepts(arg.Kind()) {
			n.abort(ilerr.New(ilerr.NewStaticArgKind{
				Cons:  t.Name,
				Param: params[i].Name,
				Want:  params[i].Kind.String(),
				Got:   arg.Kind().String(),
			}))
		}
		if typeArg, ok := arg.(TypeArg); ok {
			arg = TypeArg{Type: n.normalise(typeArg.Type)}
		}
		args[i] = arg
	}

	alias, ok := index.(*AliasIndex)
	if !ok {
		return TraitType{Name: t.Name, Args: args}
	}
	if n.expanding[alias.Name] {
		n.abort(ilerr.New(ilerr.NewNotYetImplemented{What: "recursive alias " + alias.Name}))
	}
	n.expanding[alias.Name] = true
	defer delete(n.expanding, alias.Name)
	return n.normalise(substStatic(alias.Target, bindStatic(params, args)))
}

// coerceStaticArg reads a bare name written where a non-type argument is
// expected as a reference to a static parameter of that kind
func coerceStaticArg(kind StaticKind, arg StaticArg) StaticArg {
	typeArg, ok := arg.(TypeArg)
	if !ok || kind == KindType {
		return arg
	}
	var name string
	switch t := typeArg.Type.(type) {
	case VarType:
		name = t.Name
	case TraitType:
		if len(t.Args) > 0 {
			return arg
		}
		name = t.Name
	default:
		return arg
	}
	switch kind {
	case KindInt, KindNat:
		return IntArg{Name: name}
	case KindBool:
		return BoolArg{Name: name}
	case KindDim:
		return DimArg{Expr: DimRef{Name: name}}
	case KindUnit:
		return UnitArg{Expr: DimRef{Name: name}}
	case KindOp:
		return OpArg{Name: name}
	}
	return arg
}

func bindStatic(params []StaticParam, args []StaticArg) map[string]StaticArg {
	bound := make(map[string]StaticArg, len(params))
	for i, p := range params {
		bound[p.Name] = args[i]
	}
	return bound
}

func (n typeNormaliser) desugarArray(t ArrayType) TraitType {
	if len(t.Extents) == 0 || len(t.Extents) > len(arrayNames) {
		n.abort(ilerr.New(ilerr.NewArrayShape{Type: t.String(), Reason: "arrays have 1 to 3 dimensions"}))
	}
	args := []StaticArg{TypeArg{Type: t.Elem}}
	for i, extent := range t.Extents {
		if extent.Size == nil {
			n.abort(ilerr.New(ilerr.NewArrayShape{Type: t.String(), Reason: "missing size of dimension " + string(rune('0'+i))}))
		}
		base := extent.Base
		if base == nil {
			base = IntLit(0)
		}
		args = append(args, base, extent.Size)
	}
	return TraitType{Name: arrayNames[len(t.Extents)-1], Args: args}
}

func (n typeNormaliser) desugarMatrix(t MatrixType) TraitType {
	if len(t.Extents) != 2 {
		n.abort(ilerr.New(ilerr.NewMatrixShape{Type: t.String(), Reason: "matrices have exactly 2 dimensions"}))
	}
	args := []StaticArg{TypeArg{Type: t.Elem}}
	for _, extent := range t.Extents {
		if base, ok := extent.Base.(IntArg); extent.Base != nil && (!ok || base.Name != "" || base.Value != 0) {
			n.abort(ilerr.New(ilerr.NewMatrixShape{Type: t.String(), Reason: "matrix dimensions must be zero-based"}))
		}
		if extent.Size == nil {
			n.abort(ilerr.New(ilerr.NewMatrixShape{Type: t.String(), Reason: "missing dimension size"}))
		}
		args = append(args, extent.Size)
	}
	return TraitType{Name: MatrixName, Args: args}
}

// normaliseTuple distributes unions and then intersections out of the
// tuple slots, so that every slot of the resulting tuples is atomic
func (n typeNormaliser) normaliseTuple(t TupleType) Type {
	normal := TupleType{Elements: mapTypes(t.Elements, n.normalise)}
	if t.VarArgs != nil {
		if varArgs := n.normalise(t.VarArgs); !Equal(varArgs, Bottom) {
			normal.VarArgs = varArgs
		}
	}
	for _, k := range t.Keywords {
		normal.Keywords = append(normal.Keywords, KeywordType{Name: k.Name, Type: n.normalise(k.Type)})
	}
	slices.SortStableFunc(normal.Keywords, func(a, b KeywordType) int { return strings.Compare(a.Name, b.Name) })

	if normal.VarArgs == nil && len(normal.Keywords) == 0 {
		switch len(normal.Elements) {
		case 0:
			return Void
		case 1:
			return normal.Elements[0]
		}
	}

	var disjuncts []Type
	for _, unionFree := range distributeSlots(normal, func(t Type) []Type {
		if u, ok := t.(UnionType); ok {
			return u.Elements
		}
		return nil
	}) {
		var conjuncts []Type
		for _, tuple := range distributeSlots(unionFree, func(t Type) []Type {
			if i, ok := t.(IntersectionType); ok {
				return i.Elements
			}
			return nil
		}) {
			conjuncts = append(conjuncts, tuple)
		}
		disjuncts = append(disjuncts, n.makeIntersection(conjuncts, n.history))
	}
	return n.makeUnion(disjuncts, n.history)
}

// distributeSlots returns the cross product of the alternatives of each
// slot of t. split returns nil for a slot that has no alternatives.
func distributeSlots(t TupleType, split func(Type) []Type) []TupleType {
	slots := slices.Collect(t.children())
	alternatives := make([][]Type, len(slots))
	for i, slot := range slots {
		alternatives[i] = split(slot)
		if alternatives[i] == nil {
			alternatives[i] = []Type{slot}
		}
	}
	products := [][]Type{{}}
	for _, alts := range alternatives {
		next := make([][]Type, 0, len(products)*len(alts))
		for _, prefix := range products {
			for _, alt := range alts {
				next = append(next, append(slices.Clone(prefix), alt))
			}
		}
		products = next
	}
	tuples := make([]TupleType, len(products))
	for i, product := range products {
		idx := 0
		tuples[i] = t.doMap(func(Type) Type {
			slot := product[idx]
			idx++
			return slot
		}).(TupleType)
	}
	return tuples
}

func (n typeNormaliser) normaliseArrow(t ArrowType) Type {
	domain := n.normalise(t.Domain)
	rng := n.normalise(t.Range)
	effect := n.normaliseEffect(t.Effect)
	arrow := func(rng Type) Type {
		return ArrowType{StaticParams: t.StaticParams, Domain: domain, Range: rng, Effect: effect}
	}
	if conj, ok := rng.(IntersectionType); ok {
		return n.makeIntersection(mapTypes(conj.Elements, arrow), n.history)
	}
	return arrow(rng)
}

// normaliseEffect keeps the maximal thrown types only
func (n typeNormaliser) normaliseEffect(e Effect) Effect {
	if len(e.Throws) == 0 {
		return Effect{IO: e.IO}
	}
	thrown := n.makeUnion(mapTypes(e.Throws, n.normalise), n.history)
	switch thrown := thrown.(type) {
	case BottomType:
		return Effect{IO: e.IO}
	case UnionType:
		return Effect{Throws: thrown.Elements, IO: e.IO}
	default:
		return Effect{Throws: []Type{thrown}, IO: e.IO}
	}
}

// sortElements orders union and intersection elements deterministically
func sortElements(ts []Type) []Type {
	return slices.SortedStableFunc(slices.Values(ts), func(a, b Type) int {
		if c := strings.Compare(a.String(), b.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash(), b.Hash())
	})
}

// makeUnion joins normalised types, keeping only the elements no other element subsumes.
// Of two equivalent elements the earlier one is kept.
func (a *TypeAnalyzer) makeUnion(ts []Type, h SubtypeHistory) Type {
	var flat []Type
	for _, t := range ts {
		switch t := t.(type) {
		case AnyType:
			return Any
		case BottomType:
		case UnionType:
			flat = append(flat, t.Elements...)
		default:
			flat = append(flat, t)
		}
	}
	kept := a.eliminate(flat, func(candidate, other Type) bool {
		return a.sub(candidate, other, h).IsTrue()
	})
	switch len(kept) {
	case 0:
		return Bottom
	case 1:
		return kept[0]
	}
	return UnionType{Elements: sortElements(kept)}
}

// makeIntersection meets normalised types, keeping only the elements that subsume no other element.
// A union element is distributed so that the result stays disjunctive.
func (a *TypeAnalyzer) makeIntersection(ts []Type, h SubtypeHistory) Type {
	var flat []Type
	for _, t := range ts {
		switch t := t.(type) {
		case BottomType:
			return Bottom
		case AnyType:
		case IntersectionType:
			flat = append(flat, t.Elements...)
		default:
			flat = append(flat, t)
		}
	}
	if i := slices.IndexFunc(flat, func(t Type) bool { _, ok := t.(UnionType); return ok }); i >= 0 {
		rest := slices.Delete(slices.Clone(flat), i, i+1)
		disjuncts := make([]Type, 0)
		for _, elem := range flat[i].(UnionType).Elements {
			disjuncts = append(disjuncts, a.makeIntersection(append(slices.Clone(rest), elem), h))
		}
		return a.makeUnion(disjuncts, h)
	}
	kept := a.eliminate(flat, func(candidate, other Type) bool {
		return a.sub(other, candidate, h).IsTrue()
	})
	switch len(kept) {
	case 0:
		return Any
	case 1:
		return kept[0]
	}
	return IntersectionType{Elements: sortElements(kept)}
}

// eliminate drops every element redundant with respect to another one.
// redundant(c, o) reports whether c adds nothing once o is present.
func (a *TypeAnalyzer) eliminate(ts []Type, redundant func(candidate, other Type) bool) []Type {
	var kept []Type
	for _, candidate := range ts {
		if slices.ContainsFunc(kept, func(k Type) bool { return Equal(k, candidate) || redundant(candidate, k) }) {
			continue
		}
		kept = slices.DeleteFunc(kept, func(k Type) bool { return redundant(k, candidate) })
		kept = append(kept, candidate)
	}
	return kept
}
