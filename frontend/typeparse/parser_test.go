package typeparse

import (
	"testing"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		input    string
		expected types.Type
	}{
		{"A", types.Trait("A")},
		{"Any", types.Any},
		{"Bottom", types.Bottom},
		{"()", types.Void},
		{"(A)", types.Trait("A")},
		{"$3", types.InferenceVar{ID: 3}},
		{"A|B&C", types.Union(types.Trait("A"), types.Intersection(types.Trait("B"), types.Trait("C")))},
		{"A[3]", types.ArrayType{Elem: types.Trait("A"), Extents: []types.ExtentRange{{Size: types.IntLit(3)}}}},
		{"A[1#3, 4]", types.ArrayType{Elem: types.Trait("A"), Extents: []types.ExtentRange{
			{Base: types.IntLit(1), Size: types.IntLit(3)}, {Size: types.IntLit(4)},
		}}},
		{"A[-1#n]", types.ArrayType{Elem: types.Trait("A"), Extents: []types.ExtentRange{
			{Base: types.IntLit(-1), Size: types.IntArg{Name: "n"}},
		}}},
		{"A^(2 x 3)", types.MatrixType{Elem: types.Trait("A"), Extents: []types.ExtentRange{
			{Size: types.IntLit(2)}, {Size: types.IntLit(3)},
		}}},
		{"fix $1.List[\\$1\\]", types.FixedPointType{
			Binder: types.InferenceVar{ID: 1},
			Body:   types.Trait("List", types.TypeArg{Type: types.InferenceVar{ID: 1}}),
		}},
		{"A -> B throws {E} io", types.ArrowType{
			Domain: types.Trait("A"),
			Range:  types.Trait("B"),
			Effect: types.Effect{Throws: []types.Type{types.Trait("E")}, IO: true},
		}},
		{"A -> B -> C", types.Arrow(types.Trait("A"), types.Arrow(types.Trait("B"), types.Trait("C")))},
		{"[\\T\\] T -> T", types.ArrowType{
			StaticParams: []types.StaticParam{types.TypeParam("T")},
			Domain:       types.VarType{Name: "T"},
			Range:        types.VarType{Name: "T"},
		}},
		{"(A, B...)", types.VarTuple(types.Trait("B"), types.Trait("A"))},
		{"(A, k=B)", types.TupleType{
			Elements: []types.Type{types.Trait("A")},
			Keywords: []types.KeywordType{{Name: "k", Type: types.Trait("B")}},
		}},
		{"List[\\A, 3, true\\]", types.Trait("List",
			types.TypeArg{Type: types.Trait("A")}, types.IntLit(3), types.BoolArg{Value: true})},
		{"Q[\\m*s\\]", types.Trait("Q", types.DimArg{Expr: types.DimOp{
			Op: "*", Left: types.DimRef{Name: "m"}, Right: types.DimRef{Name: "s"},
		}})},
		{"A // trailing comment", types.Trait("A")},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			parsed, err := ParseType(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, parsed)
		})
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	testCases := []string{
		"A",
		"A|B->C",
		"(A->B)&C",
		"A->B|C",
		"A[1#3, 4]",
		"A^(2 x 3)",
		"fix $1.List[\\$1\\]",
		"A->B throws {E, F} io",
		"[\\T extends {A}\\] T->T",
		"(A, B...)",
		"(A, k=B)",
		"List[\\A, 3, true\\]",
		"Q[\\m * s\\]",
		"((A, B), ())",
	}
	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			parsed, err := ParseType(src)
			require.NoError(t, err)
			assert.Equal(t, src, parsed.String())

			again, err := ParseType(parsed.String())
			require.NoError(t, err)
			assert.Equal(t, parsed, again)
		})
	}
}

func TestParseTypeWithParams(t *testing.T) {
	params := []types.StaticParam{
		types.TypeParam("T"),
		{Name: "n", Kind: types.KindNat},
		{Name: "b", Kind: types.KindBool},
		{Name: "d", Kind: types.KindDim},
	}
	parsed, err := ParseType("Vec[\\T, n, b, d\\] -> T", params...)
	require.NoError(t, err)
	assert.Equal(t, types.Arrow(
		types.Trait("Vec",
			types.TypeArg{Type: types.VarType{Name: "T"}},
			types.IntArg{Name: "n"},
			types.BoolArg{Name: "b"},
			types.DimArg{Expr: types.DimRef{Name: "d"}}),
		types.VarType{Name: "T"},
	), parsed)

	// without the parameter in scope the name is a trait
	parsed, err = ParseType("T")
	require.NoError(t, err)
	assert.Equal(t, types.Trait("T"), parsed)
}

func TestParseTypeErrors(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"A <", "at 1:3: unexpected character '<'"},
		{"(A, B", "expected ',' but found end of input"},
		{"A B", "at 1:3: unexpected 'B'"},
		{"", "expected a type but found end of input"},
		{"$x", "expected an inference variable number"},
		{"A^(2, 3)", "expected 'x' between matrix dimensions"},
		{"(A..., B...)", "a tuple has at most one varargs entry"},
		{"(k=A, B)", "positional entries must come before varargs and keywords"},
		{"[\\T\\] T", "static parameters must be followed by an arrow type"},
		{"[\\hidden T\\] T -> T", "generic arrows cannot have hidden parameters"},
		{"fix $x.A", "expected a fixed point binder"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseType(tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)

			var ileErr ilerr.IleError
			require.ErrorAs(t, err, &ileErr)
			assert.Equal(t, ilerr.Parse, ileErr.Code())
		})
	}
}

func TestMustParseTypePanics(t *testing.T) {
	assert.Equal(t, types.Trait("A"), MustParseType("A"))
	assert.Panics(t, func() { MustParseType("A <") })
}

func TestParseConstraint(t *testing.T) {
	c, err := ParseConstraint("$1 <: A|B")
	require.NoError(t, err)
	assert.Equal(t, types.ConstraintExtends, c.Kind)
	assert.Equal(t, types.InferenceVar{ID: 1}, c.Left)
	assert.Equal(t, "$1 <: A|B", c.String())

	c, err = ParseConstraint("T = (A, B)", types.TypeParam("T"))
	require.NoError(t, err)
	assert.Equal(t, types.ConstraintEquals, c.Kind)
	assert.Equal(t, types.VarType{Name: "T"}, c.Left)
	assert.Equal(t, "T = (A, B)", c.String())

	_, err = ParseConstraint("A")
	assert.ErrorContains(t, err, "expected '<:' but found end of input")
}

const declsSource = `
trait A
trait B extends {A}; trait D extends {A}
trait C[\T, n: nat, hidden U\] extends {B, List[\U\] where {U <: T}} where {T <: A}
trait S[\T extends {A}\]
alias Pair[\T\] = (T, T)
`

func TestParseDecls(t *testing.T) {
	decls, err := ParseDecls(declsSource)
	require.NoError(t, err)
	require.Len(t, decls, 6)

	names := make([]string, len(decls))
	for i, decl := range decls {
		names[i] = decl.ConsName()
	}
	assert.Equal(t, []string{"A", "B", "D", "C", "S", "Pair"}, names)

	b := decls[1].(*types.TraitIndex)
	require.Len(t, b.Extends, 1)
	assert.Equal(t, types.Trait("A"), b.Extends[0].Super)

	c := decls[3].(*types.TraitIndex)
	assert.Equal(t, []types.StaticParam{types.TypeParam("T"), {Name: "n", Kind: types.KindNat}}, c.Params)
	assert.Equal(t, []types.StaticParam{types.TypeParam("U")}, c.HiddenParams)
	require.Len(t, c.Extends, 2)
	assert.Equal(t, types.Trait("B"), c.Extends[0].Super)
	assert.Empty(t, c.Extends[0].Where)
	assert.Equal(t, "List[\\U\\]", c.Extends[1].Super.String())
	require.Len(t, c.Extends[1].Where, 1)
	assert.Equal(t, types.TypeConstraint{
		Kind:  types.ConstraintExtends,
		Left:  types.VarType{Name: "U"},
		Right: types.VarType{Name: "T"},
	}, c.Extends[1].Where[0])
	require.Len(t, c.Where, 1)
	assert.Equal(t, "T <: A", c.Where[0].String())

	s := decls[4].(*types.TraitIndex)
	require.Len(t, s.Params, 1)
	assert.Equal(t, "T extends {A}", s.Params[0].String())

	pair := decls[5].(*types.AliasIndex)
	assert.Equal(t, []types.StaticParam{types.TypeParam("T")}, pair.Params)
	assert.Equal(t, types.Tuple(types.VarType{Name: "T"}, types.VarType{Name: "T"}), pair.Target)
}

func TestParseDeclsErrors(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"alias X[\\hidden T\\] = T", "aliases cannot have hidden parameters"},
		{"trait X[\\n: real\\]", "unknown static parameter kind 'real'"},
		{"trait X[\\n: nat extends {A}\\]", "only type parameters can have bounds"},
		{"trait X extends {(A, B)}", "a trait can only extend traits"},
		{"type X = A", "expected 'trait' or 'alias' but found 'type'"},
		{"trait X extends {A} where {A}", "expected '<:' but found '}'"},
		{"alias X", "expected '=' but found end of input"},
		{"trait A\ntrait B ?", "at 2:9: unexpected character '?'"},
		{"trait A\n  // comment\n  alias", "at 3:8: expected a name but found end of input"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseDecls(tc.input)
			assert.ErrorContains(t, err, tc.expected)
		})
	}
}
