package types_test

import (
	"testing"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/index"
	"github.com/stokito/fortress-lang-sub003/frontend/typeparse"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const latticeDecls = `
trait A
trait B extends {A}
trait C extends {B}
trait D extends {A}
trait E extends {D}
trait List[\T\]
trait Vec[\n: nat\]
alias Pair[\T\] = (T, T)
`

func newAnalyzer(t *testing.T, decls string) *types.TypeAnalyzer {
	table, errs := index.Load(decls)
	require.False(t, errs.HasError(), "declarations: %v", errs.Errors())
	return types.NewAnalyzer(table, types.DefaultOptions())
}

func subtype(t *testing.T, a *types.TypeAnalyzer, sub, super string) types.ConstraintFormula {
	f, err := a.Subtype(typeparse.MustParseType(sub), typeparse.MustParseType(super))
	require.NoError(t, err, "%s <: %s", sub, super)
	return f
}

func TestSubtypeScenarios(t *testing.T) {
	testCases := []struct {
		sub, super string
		expected   string
	}{
		{"A", "A", "TRUE"},
		{"A", "B", "FALSE"},
		{"C", "A", "TRUE"},
		{"C", "D", "FALSE"},
		{"C", "B|D", "TRUE"},
		{"B&D", "C", "FALSE"},
		{"C&E", "B&D", "TRUE"},
		{"B|D", "A", "TRUE"},
		{"B|D", "B", "FALSE"},
		{"(B, D)", "(A, A)", "TRUE"},
		{"(A, B)", "(A, B, Any)", "FALSE"},
		{"(A, A, A)", "(A...)", "TRUE"},
		{"()", "(A...)", "TRUE"},
		{"Any", "(A...)", "FALSE"},
		{"A->C", "C->C", "TRUE"},
		{"D->C", "C->C", "FALSE"},
		{"Pair[\\C\\]", "(B, A)", "TRUE"},
		{"(A, A)", "Pair[\\A\\]", "TRUE"},
		{"List[\\C|B\\]", "List[\\B\\]", "TRUE"},
		{"C[3]", "Array1[\\A, 0, 3\\]", "FALSE"},
		{"C[3]", "Object", "TRUE"},
		{"$1", "A", "{$1 <: A}"},
		{"C", "$1", "{C <: $1}"},
		{"List[\\$1\\]", "List[\\C\\]", "{C <: $1, $1 <: C}"},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			a := newAnalyzer(t, latticeDecls)
			assert.Equal(t, tc.expected, subtype(t, a, tc.sub, tc.super).String())
		})
	}
}

var sampleTypes = []string{
	"A", "C", "E", "()", "(A, B)", "(A...)", "(C, k=B)", "A->B", "B|D", "C&E",
	"List[\\A\\]", "Object", "Any", "Bottom", "A->B throws {C} io", "(B|D, C)",
}

func TestSubtypeProperties(t *testing.T) {
	a := newAnalyzer(t, latticeDecls)
	for _, src := range sampleTypes {
		t.Run(src, func(t *testing.T) {
			assert.True(t, subtype(t, a, src, src).IsTrue(), "reflexivity")
			assert.True(t, subtype(t, a, src, "Any").IsTrue(), "Any is the top")
			assert.True(t, subtype(t, a, "Bottom", src).IsTrue(), "Bottom is the bottom")

			typ := typeparse.MustParseType(src)
			normal, err := a.Normalize(typ)
			require.NoError(t, err)

			joined, err := a.Join(typ, types.Bottom)
			require.NoError(t, err)
			assert.Equal(t, normal.String(), joined.String())
			met, err := a.Meet(typ, types.Any)
			require.NoError(t, err)
			assert.Equal(t, normal.String(), met.String())

			joined, err = a.Join(typ, types.Any)
			require.NoError(t, err)
			assert.Equal(t, "Any", joined.String())
			met, err = a.Meet(typ, types.Bottom)
			require.NoError(t, err)
			assert.Equal(t, "Bottom", met.String())
		})
	}
}

func TestJoinMeetDuality(t *testing.T) {
	a := newAnalyzer(t, latticeDecls)
	for _, s := range sampleTypes {
		for _, u := range sampleTypes {
			if !subtype(t, a, s, u).IsTrue() {
				continue
			}
			sNormal, err := a.Normalize(typeparse.MustParseType(s))
			require.NoError(t, err)
			uNormal, err := a.Normalize(typeparse.MustParseType(u))
			require.NoError(t, err)

			joined, err := a.JoinNormal(sNormal, uNormal)
			require.NoError(t, err)
			equiv, err := a.EquivalentNormal(joined, uNormal)
			require.NoError(t, err)
			assert.True(t, equiv.IsTrue(), "%s <: %s but their join is %s", s, u, joined)

			met, err := a.MeetNormal(sNormal, uNormal)
			require.NoError(t, err)
			equiv, err = a.EquivalentNormal(met, sNormal)
			require.NoError(t, err)
			assert.True(t, equiv.IsTrue(), "%s <: %s but their meet is %s", s, u, met)
		}
	}
}

func TestCacheTransparency(t *testing.T) {
	queries := [][2]string{
		{"C", "A"}, {"B|D", "A"}, {"(C, E)", "(B, D)|(A, E)"}, {"A->C", "C->A"},
		{"List[\\$1\\]", "List[\\B\\]"}, {"C&E", "B&D"}, {"E", "B|C"},
	}
	warm := newAnalyzer(t, latticeDecls)
	for _, q := range queries {
		subtype(t, warm, q[0], q[1])
	}
	for i := len(queries) - 1; i >= 0; i-- {
		q := queries[i]
		cold := newAnalyzer(t, latticeDecls)
		assert.Equal(t,
			subtype(t, cold, q[0], q[1]).String(),
			subtype(t, warm, q[0], q[1]).String(),
			"%s <: %s", q[0], q[1])
	}
}

func TestRecursiveTraitsTerminate(t *testing.T) {
	a := newAnalyzer(t, `
trait M
trait L[\T\] extends {L[\L[\T\]\]}
trait P extends {Q}
trait Q extends {P}
`)
	testCases := []struct {
		sub, super string
		expected   bool
	}{
		{"L[\\M\\]", "M", false},
		{"L[\\M\\]", "L[\\M\\]", true},
		{"L[\\M\\]", "Object", true},
		{"P", "M", false},
		{"P", "Q", true},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			assert.Equal(t, tc.expected, subtype(t, a, tc.sub, tc.super).IsTrue())
		})
	}
	assert.False(t, a.Errors().HasError())
}

func TestWhereClauses(t *testing.T) {
	a := newAnalyzer(t, latticeDecls+`
trait Box[\T\]
trait Wrapper[\T, hidden U\] extends {Box[\U\] where {U <: T}}
trait Sorted[\T\] extends {A} where {T <: B}
`)
	assert.True(t, subtype(t, a, "Sorted[\\C\\]", "A").IsTrue())
	assert.True(t, subtype(t, a, "Sorted[\\A\\]", "A").IsFalse())

	f := subtype(t, a, "Wrapper[\\A\\]", "Box[\\B\\]")
	require.False(t, f.IsTrue())
	require.False(t, f.IsFalse())
	solved, err := f.Solve()
	require.NoError(t, err)
	assert.True(t, solved.IsTrue(), "U := B satisfies B <: A")

	f = subtype(t, a, "Wrapper[\\C\\]", "Box[\\A\\]")
	solved, err = f.Solve()
	require.NoError(t, err)
	assert.True(t, solved.IsFalse(), "U := A does not satisfy A <: C")
}

func TestStaticParameterBounds(t *testing.T) {
	root := newAnalyzer(t, latticeDecls)
	bounded := root.Extend([]types.StaticParam{types.TypeParam("T", types.Trait("B"))}, nil)
	tVar := types.VarType{Name: "T"}

	testCases := []struct {
		name     string
		a        *types.TypeAnalyzer
		sub      types.Type
		super    types.Type
		expected bool
	}{
		{"bound", bounded, tVar, types.Trait("A"), true},
		{"below bound", bounded, tVar, types.Trait("C"), false},
		{"nothing below", bounded, types.Trait("C"), tVar, false},
		{"object", root, tVar, types.ObjectType, true},
		{"union of bounds", bounded, tVar, types.Union(types.Trait("E"), types.Trait("B")), true},
		{
			"where lower bound",
			root.Extend([]types.StaticParam{types.TypeParam("T")}, []types.TypeConstraint{
				{Kind: types.ConstraintExtends, Left: types.Trait("C"), Right: tVar},
			}),
			types.Trait("C"), tVar, true,
		},
		{
			"where equality",
			root.Extend([]types.StaticParam{types.TypeParam("T")}, []types.TypeConstraint{
				{Kind: types.ConstraintEquals, Left: tVar, Right: types.Trait("D")},
			}),
			tVar, types.Trait("A"), true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tc.a.Subtype(tc.sub, tc.super)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f.IsTrue())
		})
	}
}

func TestArrowEffects(t *testing.T) {
	a := newAnalyzer(t, latticeDecls)
	testCases := []struct {
		sub, super string
		expected   bool
	}{
		{"A->A throws {C}", "A->A throws {B}", true},
		{"A->A throws {B}", "A->A throws {C}", false},
		{"A->A throws {C, E}", "A->A throws {B, D}", true},
		{"A->A throws {C, E}", "A->A throws {B}", false},
		{"A->A", "A->A throws {B}", true},
		{"A->A io", "A->A", false},
		{"A->A", "A->A io", true},
		{"[\\T\\] T->T", "[\\T\\] T->T", true},
		{"[\\T\\] T->A", "[\\T\\] T->Any", true},
		{"[\\T\\] T->T", "[\\U\\] U->U", false},
		{"[\\T\\] T->T", "A->A", false},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			assert.Equal(t, tc.expected, subtype(t, a, tc.sub, tc.super).IsTrue())
		})
	}
}

func TestKeywordTuples(t *testing.T) {
	a := newAnalyzer(t, latticeDecls)
	testCases := []struct {
		sub, super string
		expected   bool
	}{
		{"(A, k=C)", "(A, k=B)", true},
		{"(A, k=B)", "(A, k=C)", false},
		{"(A, k=C)", "(A, j=C)", false},
		{"(A, k=B, j=C)", "(A, j=A, k=A)", true},
		{"(A, k=B)", "(A, B)", false},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			assert.Equal(t, tc.expected, subtype(t, a, tc.sub, tc.super).IsTrue())
		})
	}
}

func TestMalformedTypesAreReported(t *testing.T) {
	testCases := []struct {
		sub, super string
		code       ilerr.ErrCode
	}{
		{"Foo", "A", ilerr.UnknownType},
		{"List", "A", ilerr.StaticArgCount},
		{"Vec[\\true\\]", "A", ilerr.StaticArgKind},
		{"A", "A[1, 2, 3, 4]", ilerr.ArrayShape},
		{"A^(1#2 x 3)", "A", ilerr.MatrixShape},
	}
	for _, tc := range testCases {
		t.Run(tc.sub+" <: "+tc.super, func(t *testing.T) {
			a := newAnalyzer(t, latticeDecls)
			_, err := a.Subtype(typeparse.MustParseType(tc.sub), typeparse.MustParseType(tc.super))
			require.Error(t, err)
			require.True(t, a.Errors().HasError())
			assert.Equal(t, tc.code, a.Errors().Errors()[0].Code())
		})
	}
}

func TestSolveScenario(t *testing.T) {
	a := newAnalyzer(t, `
trait Int
trait Bool
`)
	f := subtype(t, a, "$1", "$2").
		And(subtype(t, a, "Int", "$1")).
		And(subtype(t, a, "$2", "Int"))
	solved, err := f.Solve()
	require.NoError(t, err)
	assert.Equal(t, "{$1 := Int, $2 := Int}", solved.String())

	r := types.NewReplacer(solved.Map(), types.Any)
	assert.Equal(t, "(Int, Int, Any)", r.Replace(typeparse.MustParseType("($1, $2, $3)")).String())

	f = subtype(t, a, "Int", "$1").And(subtype(t, a, "$1", "Bool"))
	solved, err = f.Solve()
	require.NoError(t, err)
	assert.True(t, solved.IsFalse())
}

func TestAnalyzerInferenceVars(t *testing.T) {
	a := types.NewAnalyzer(nil, types.Options{})
	first, second := a.NewInferenceVar(), a.NewInferenceVar()
	assert.NotEqual(t, first, second)
	assert.Greater(t, first.ID, uint64(1000))

	f, err := a.Subtype(first, types.ObjectType)
	require.NoError(t, err)
	assert.Equal(t, "{"+first.String()+" <: Object}", f.String())
	assert.Contains(t, a.String(), "scope=0")
	assert.Contains(t, a.Extend(nil, nil).String(), "scope=1")
}
