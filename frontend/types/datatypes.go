package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/stokito/fortress-lang-sub003/util"
)

// Type is a value of the type lattice. Types are immutable: normalisation
// and substitution always build new values.
type Type interface {
	fmt.Stringer
	Hash() uint64
	children() iter.Seq[Type]
	// doMap rebuilds the type with f applied to each direct child
	doMap(f func(Type) Type) Type
	isType()
}

var (
	_ Type = AnyType{}
	_ Type = BottomType{}
	_ Type = VoidType{}
	_ Type = TraitType{}
	_ Type = VarType{}
	_ Type = TupleType{}
	_ Type = ArrowType{}
	_ Type = UnionType{}
	_ Type = IntersectionType{}
	_ Type = InferenceVar{}
	_ Type = FixedPointType{}
	_ Type = ArrayType{}
	_ Type = MatrixType{}
)

// Equal can be used to compare Type instances for equality.
// Types are compared structurally through their hash.
func Equal[H, HH set.Hasher[uint64]](this H, other HH) bool {
	return this.Hash() == other.Hash()
}

const (
	tagAny byte = iota + 1
	tagBottom
	tagVoid
	tagTrait
	tagVar
	tagTuple
	tagArrow
	tagUnion
	tagIntersection
	tagInferenceVar
	tagFixedPoint
	tagArray
	tagMatrix
	tagKeyword
	tagEffect
	tagStaticArg
	tagPair
)

// hashOf mixes a constructor tag and the hashes of its parts with FNV-1a
func hashOf(tag byte, parts ...uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{tag})
	var buf [8]byte
	for _, part := range parts {
		binary.LittleEndian.PutUint64(buf[:], part)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func hashTypes(tag byte, ts []Type, extra ...uint64) uint64 {
	parts := make([]uint64, 0, len(ts)+len(extra)+1)
	parts = append(parts, uint64(len(ts)))
	for _, t := range ts {
		parts = append(parts, t.Hash())
	}
	return hashOf(tag, append(parts, extra...)...)
}

var emptyChildren iter.Seq[Type] = func(func(Type) bool) {}

func mapTypes(ts []Type, f func(Type) Type) []Type {
	if ts == nil {
		return nil
	}
	mapped := make([]Type, len(ts))
	for i, t := range ts {
		mapped[i] = f(t)
	}
	return mapped
}

// AnyType is the top of the lattice
type AnyType struct{}

// BottomType is the bottom of the lattice
type BottomType struct{}

// VoidType is the type of the empty tuple
type VoidType struct{}

var (
	Any    Type = AnyType{}
	Bottom Type = BottomType{}
	Void   Type = VoidType{}
)

func (AnyType) isType()                         {}
func (AnyType) Hash() uint64                    { return hashOf(tagAny) }
func (AnyType) String() string                  { return "Any" }
func (AnyType) children() iter.Seq[Type]        { return emptyChildren }
func (t AnyType) doMap(func(Type) Type) Type    { return t }
func (BottomType) isType()                      {}
func (BottomType) Hash() uint64                 { return hashOf(tagBottom) }
func (BottomType) String() string               { return "Bottom" }
func (BottomType) children() iter.Seq[Type]     { return emptyChildren }
func (t BottomType) doMap(func(Type) Type) Type { return t }
func (VoidType) isType()                        {}
func (VoidType) Hash() uint64                   { return hashOf(tagVoid) }
func (VoidType) String() string                 { return "()" }
func (VoidType) children() iter.Seq[Type]       { return emptyChildren }
func (t VoidType) doMap(func(Type) Type) Type   { return t }

// TraitType is a nominal type: a trait name applied to static arguments
type TraitType struct {
	Name string
	Args []StaticArg
}

func Trait(name string, args ...StaticArg) TraitType {
	return TraitType{Name: name, Args: args}
}

func (TraitType) isType() {}
func (t TraitType) Hash() uint64 {
	parts := make([]uint64, 0, len(t.Args)+1)
	parts = append(parts, hashString(t.Name))
	for _, arg := range t.Args {
		parts = append(parts, arg.Hash())
	}
	return hashOf(tagTrait, parts...)
}
func (t TraitType) String() string { return showType(t, precArrow) }
func (t TraitType) children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, arg := range t.Args {
			if typeArg, ok := arg.(TypeArg); ok && !yield(typeArg.Type) {
				return
			}
		}
	}
}
func (t TraitType) doMap(f func(Type) Type) Type {
	if len(t.Args) == 0 {
		return t
	}
	args := make([]StaticArg, len(t.Args))
	for i, arg := range t.Args {
		if typeArg, ok := arg.(TypeArg); ok {
			args[i] = TypeArg{Type: f(typeArg.Type)}
		} else {
			args[i] = arg
		}
	}
	return TraitType{Name: t.Name, Args: args}
}

// VarType refers to a static type parameter in scope
type VarType struct {
	Name string
}

func (VarType) isType()                      {}
func (t VarType) Hash() uint64               { return hashOf(tagVar, hashString(t.Name)) }
func (t VarType) String() string             { return t.Name }
func (VarType) children() iter.Seq[Type]     { return emptyChildren }
func (t VarType) doMap(func(Type) Type) Type { return t }

// KeywordType is a named entry of a tuple, as in (A, k=B)
type KeywordType struct {
	Name string
	Type Type
}

func (k KeywordType) Hash() uint64 { return hashOf(tagKeyword, hashString(k.Name), k.Type.Hash()) }

// TupleType is a fixed or variable-arity product type.
// VarArgs is nil for fixed-arity tuples.
type TupleType struct {
	Elements []Type
	VarArgs  Type
	Keywords []KeywordType
}

func Tuple(elems ...Type) TupleType {
	return TupleType{Elements: elems}
}

func VarTuple(varArgs Type, elems ...Type) TupleType {
	return TupleType{Elements: elems, VarArgs: varArgs}
}

func (TupleType) isType() {}
func (t TupleType) Hash() uint64 {
	extra := make([]uint64, 0, len(t.Keywords)+1)
	if t.VarArgs != nil {
		extra = append(extra, t.VarArgs.Hash())
	} else {
		extra = append(extra, 0)
	}
	for _, k := range t.Keywords {
		extra = append(extra, k.Hash())
	}
	return hashTypes(tagTuple, t.Elements, extra...)
}
func (t TupleType) String() string { return showType(t, precArrow) }
func (t TupleType) children() iter.Seq[Type] {
	varArgs := emptyChildren
	if t.VarArgs != nil {
		varArgs = util.SingleIter(t.VarArgs)
	}
	keywords := util.MapIter(slices.Values(t.Keywords), func(k KeywordType) Type { return k.Type })
	return util.ConcatIter(slices.Values(t.Elements), varArgs, keywords)
}
func (t TupleType) doMap(f func(Type) Type) Type {
	mapped := TupleType{Elements: mapTypes(t.Elements, f)}
	if t.VarArgs != nil {
		mapped.VarArgs = f(t.VarArgs)
	}
	if t.Keywords != nil {
		mapped.Keywords = make([]KeywordType, len(t.Keywords))
		for i, k := range t.Keywords {
			mapped.Keywords[i] = KeywordType{Name: k.Name, Type: f(k.Type)}
		}
	}
	return mapped
}

// Effect is the set of exceptions an arrow may throw and whether it performs io
type Effect struct {
	Throws []Type
	IO     bool
}

func (e Effect) Hash() uint64 {
	io := uint64(0)
	if e.IO {
		io = 1
	}
	return hashTypes(tagEffect, e.Throws, io)
}

func (e Effect) isEmpty() bool {
	return len(e.Throws) == 0 && !e.IO
}

// ArrowType is a function type. Generic arrows carry their static parameters.
type ArrowType struct {
	StaticParams []StaticParam
	Domain       Type
	Range        Type
	Effect       Effect
}

func Arrow(domain, rng Type) ArrowType {
	return ArrowType{Domain: domain, Range: rng}
}

func (ArrowType) isType() {}
func (t ArrowType) Hash() uint64 {
	parts := []uint64{t.Domain.Hash(), t.Range.Hash(), t.Effect.Hash()}
	for _, p := range t.StaticParams {
		parts = append(parts, hashString(p.Name), uint64(p.Kind))
	}
	return hashOf(tagArrow, parts...)
}
func (t ArrowType) String() string { return showType(t, precArrow) }
func (t ArrowType) children() iter.Seq[Type] {
	return util.ConcatIter(util.SingleIter(t.Domain), util.SingleIter(t.Range), slices.Values(t.Effect.Throws))
}
func (t ArrowType) doMap(f func(Type) Type) Type {
	return ArrowType{
		StaticParams: t.StaticParams,
		Domain:       f(t.Domain),
		Range:        f(t.Range),
		Effect:       Effect{Throws: mapTypes(t.Effect.Throws, f), IO: t.Effect.IO},
	}
}

// UnionType is the join of its elements
type UnionType struct {
	Elements []Type
}

func Union(elems ...Type) UnionType {
	return UnionType{Elements: elems}
}

func (UnionType) isType()                        {}
func (t UnionType) Hash() uint64                 { return hashTypes(tagUnion, t.Elements) }
func (t UnionType) String() string               { return showType(t, precArrow) }
func (t UnionType) children() iter.Seq[Type]     { return slices.Values(t.Elements) }
func (t UnionType) doMap(f func(Type) Type) Type { return UnionType{Elements: mapTypes(t.Elements, f)} }

// IntersectionType is the meet of its elements
type IntersectionType struct {
	Elements []Type
}

func Intersection(elems ...Type) IntersectionType {
	return IntersectionType{Elements: elems}
}

func (IntersectionType) isType()                    {}
func (t IntersectionType) Hash() uint64             { return hashTypes(tagIntersection, t.Elements) }
func (t IntersectionType) String() string           { return showType(t, precArrow) }
func (t IntersectionType) children() iter.Seq[Type] { return slices.Values(t.Elements) }
func (t IntersectionType) doMap(f func(Type) Type) Type {
	return IntersectionType{Elements: mapTypes(t.Elements, f)}
}

// InferenceVar stands for a type that is not known yet.
//
// Canonical variables only exist inside the subtype cache: they are
// numbered from 0 for each cache query and never escape it.
type InferenceVar struct {
	ID        uint64
	Canonical bool
}

func (InferenceVar) isType() {}
func (t InferenceVar) Hash() uint64 {
	canonical := uint64(0)
	if t.Canonical {
		canonical = 1
	}
	return hashOf(tagInferenceVar, t.ID, canonical)
}
func (t InferenceVar) String() string {
	if t.Canonical {
		return canonicalName(t.ID)
	}
	return "$" + strconv.FormatUint(t.ID, 10)
}
func (InferenceVar) children() iter.Seq[Type]     { return emptyChildren }
func (t InferenceVar) doMap(func(Type) Type) Type { return t }

var (
	greekLetters   = []rune("αβγδεζηθικλμνξοπρστυφχψω")
	latinLetters   = []rune("abcdefghijklmnopqrstuvwxyz")
	circledLetters = []rune("ⓐⓑⓒⓓⓔⓕⓖⓗⓘⓙⓚⓛⓜⓝⓞⓟⓠⓡⓢⓣⓤⓥⓦⓧⓨⓩ")
)

// canonicalName is only used for display; identity is the number itself
func canonicalName(n uint64) string {
	for _, alphabet := range [][]rune{greekLetters, latinLetters, circledLetters} {
		if n < uint64(len(alphabet)) {
			return string(alphabet[n])
		}
		n -= uint64(len(alphabet))
	}
	return "#" + strconv.FormatUint(n, 10)
}

// FixedPointType binds Binder inside Body, standing for the infinite unfolding of Body
type FixedPointType struct {
	Binder InferenceVar
	Body   Type
}

func (FixedPointType) isType()                    {}
func (t FixedPointType) Hash() uint64             { return hashOf(tagFixedPoint, t.Binder.Hash(), t.Body.Hash()) }
func (t FixedPointType) String() string           { return showType(t, precArrow) }
func (t FixedPointType) children() iter.Seq[Type] { return util.SingleIter[Type](t.Body) }
func (t FixedPointType) doMap(f func(Type) Type) Type {
	return FixedPointType{Binder: t.Binder, Body: f(t.Body)}
}

// unfold replaces the binder with the fixed point itself, once
func (t FixedPointType) unfold() Type {
	return substVars(t.Body, Substitution{t.Binder: t})
}

// ExtentRange is one dimension of an array type. A nil Base means zero.
type ExtentRange struct {
	Base StaticArg
	Size StaticArg
}

func (e ExtentRange) Hash() uint64 {
	var base, size uint64
	if e.Base != nil {
		base = e.Base.Hash()
	}
	if e.Size != nil {
		size = e.Size.Hash()
	}
	return hashOf(tagStaticArg, base, size)
}

func (e ExtentRange) String() string {
	sb := strings.Builder{}
	if e.Base != nil {
		sb.WriteString(e.Base.String())
		sb.WriteString("#")
	}
	if e.Size != nil {
		sb.WriteString(e.Size.String())
	}
	return sb.String()
}

// ArrayType is the T[n, m] sugar for the ArrayN traits
type ArrayType struct {
	Elem    Type
	Extents []ExtentRange
}

// MatrixType is the T^(n x m) sugar for the Matrix trait
type MatrixType struct {
	Elem    Type
	Extents []ExtentRange
}

func hashExtents(tag byte, elem Type, extents []ExtentRange) uint64 {
	parts := []uint64{elem.Hash()}
	for _, e := range extents {
		parts = append(parts, e.Hash())
	}
	return hashOf(tag, parts...)
}

func (ArrayType) isType()                    {}
func (t ArrayType) Hash() uint64             { return hashExtents(tagArray, t.Elem, t.Extents) }
func (t ArrayType) String() string           { return showType(t, precArrow) }
func (t ArrayType) children() iter.Seq[Type] { return util.SingleIter[Type](t.Elem) }
func (t ArrayType) doMap(f func(Type) Type) Type {
	return ArrayType{Elem: f(t.Elem), Extents: t.Extents}
}
func (MatrixType) isType()                    {}
func (t MatrixType) Hash() uint64             { return hashExtents(tagMatrix, t.Elem, t.Extents) }
func (t MatrixType) String() string           { return showType(t, precArrow) }
func (t MatrixType) children() iter.Seq[Type] { return util.SingleIter[Type](t.Elem) }
func (t MatrixType) doMap(f func(Type) Type) Type {
	return MatrixType{Elem: f(t.Elem), Extents: t.Extents}
}
