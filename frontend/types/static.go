package types

import (
	"fmt"
	"strconv"
	"strings"
)

type StaticKind int

const (
	KindType StaticKind = iota
	KindInt
	KindNat
	KindBool
	KindDim
	KindUnit
	KindOp
)

func (k StaticKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindInt:
		return "int"
	case KindNat:
		return "nat"
	case KindBool:
		return "bool"
	case KindDim:
		return "dim"
	case KindUnit:
		return "unit"
	case KindOp:
		return "opr"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// accepts reports whether an argument of kind arg may instantiate a parameter of kind k
func (k StaticKind) accepts(arg StaticKind) bool {
	if k == KindNat {
		return arg == KindInt
	}
	return k == arg
}

// StaticParam is a compile-time parameter of a trait, alias or generic arrow
type StaticParam struct {
	Name string
	Kind StaticKind
	// Extends holds the declared bounds of a type parameter
	Extends []Type
}

func TypeParam(name string, extends ...Type) StaticParam {
	return StaticParam{Name: name, Kind: KindType, Extends: extends}
}

func (p StaticParam) String() string {
	if p.Kind != KindType {
		return p.Name + ": " + p.Kind.String()
	}
	if len(p.Extends) == 0 {
		return p.Name
	}
	bounds := make([]string, len(p.Extends))
	for i, b := range p.Extends {
		bounds[i] = b.String()
	}
	return p.Name + " extends {" + strings.Join(bounds, ", ") + "}"
}

// StaticArg instantiates a StaticParam of the same kind
type StaticArg interface {
	fmt.Stringer
	Hash() uint64
	Kind() StaticKind
	isStaticArg()
}

var (
	_ StaticArg = TypeArg{}
	_ StaticArg = IntArg{}
	_ StaticArg = BoolArg{}
	_ StaticArg = DimArg{}
	_ StaticArg = UnitArg{}
	_ StaticArg = OpArg{}
)

type TypeArg struct {
	Type Type
}

func (TypeArg) isStaticArg()     {}
func (TypeArg) Kind() StaticKind { return KindType }
func (a TypeArg) Hash() uint64   { return hashOf(tagStaticArg, uint64(KindType), a.Type.Hash()) }
func (a TypeArg) String() string { return showType(a.Type, precArrow) }

// IntArg is either a literal or, when Name is set, a reference to an int or nat parameter
type IntArg struct {
	Value int64
	Name  string
}

func IntLit(v int64) IntArg { return IntArg{Value: v} }

func (IntArg) isStaticArg()     {}
func (IntArg) Kind() StaticKind { return KindInt }
func (a IntArg) Hash() uint64 {
	if a.Name != "" {
		return hashOf(tagStaticArg, uint64(KindInt), hashString(a.Name))
	}
	return hashOf(tagStaticArg, uint64(KindInt), 0, uint64(a.Value))
}
func (a IntArg) String() string {
	if a.Name != "" {
		return a.Name
	}
	return strconv.FormatInt(a.Value, 10)
}

// BoolArg is either a literal or, when Name is set, a reference to a bool parameter
type BoolArg struct {
	Value bool
	Name  string
}

func (BoolArg) isStaticArg()     {}
func (BoolArg) Kind() StaticKind { return KindBool }
func (a BoolArg) Hash() uint64 {
	if a.Name != "" {
		return hashOf(tagStaticArg, uint64(KindBool), hashString(a.Name))
	}
	v := uint64(0)
	if a.Value {
		v = 1
	}
	return hashOf(tagStaticArg, uint64(KindBool), 0, v)
}
func (a BoolArg) String() string {
	if a.Name != "" {
		return a.Name
	}
	return strconv.FormatBool(a.Value)
}

// DimExpr is a dimension or unit expression
type DimExpr interface {
	fmt.Stringer
	Hash() uint64
	isDimExpr()
}

type DimRef struct {
	Name string
}

func (DimRef) isDimExpr()       {}
func (d DimRef) Hash() uint64   { return hashString(d.Name) }
func (d DimRef) String() string { return d.Name }

// DimOp is a product, quotient or power of dimensions. Comparing these is not supported.
type DimOp struct {
	Op          string
	Left, Right DimExpr
}

func (DimOp) isDimExpr()       {}
func (d DimOp) Hash() uint64   { return hashOf(tagStaticArg, hashString(d.Op), d.Left.Hash(), d.Right.Hash()) }
func (d DimOp) String() string { return d.Left.String() + " " + d.Op + " " + d.Right.String() }

type DimArg struct {
	Expr DimExpr
}

func (DimArg) isStaticArg()     {}
func (DimArg) Kind() StaticKind { return KindDim }
func (a DimArg) Hash() uint64   { return hashOf(tagStaticArg, uint64(KindDim), a.Expr.Hash()) }
func (a DimArg) String() string { return a.Expr.String() }

type UnitArg struct {
	Expr DimExpr
}

func (UnitArg) isStaticArg()     {}
func (UnitArg) Kind() StaticKind { return KindUnit }
func (a UnitArg) Hash() uint64   { return hashOf(tagStaticArg, uint64(KindUnit), a.Expr.Hash()) }
func (a UnitArg) String() string { return a.Expr.String() }

type OpArg struct {
	Name string
}

func (OpArg) isStaticArg()     {}
func (OpArg) Kind() StaticKind { return KindOp }
func (a OpArg) Hash() uint64   { return hashOf(tagStaticArg, uint64(KindOp), hashString(a.Name)) }
func (a OpArg) String() string { return a.Name }
