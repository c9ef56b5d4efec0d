package types

import (
	"testing"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrivialFormulas(t *testing.T) {
	h := newTestAnalyzer().newHistory()
	bound := upperBound(ivar(1), tyA, h)

	assert.Equal(t, bound, True.And(bound))
	assert.Equal(t, False, False.And(bound))
	assert.Equal(t, True, True.Or(bound))
	assert.Equal(t, bound, False.Or(bound))
	assert.Equal(t, False, bound.And(False))
	assert.Equal(t, bound, bound.And(True))
	assert.Equal(t, True, bound.Or(True))

	assert.Equal(t, "TRUE", True.String())
	assert.Equal(t, "FALSE", False.String())
	assert.Empty(t, True.Map())
	assert.Nil(t, False.Map())
}

func TestBoundOnItselfIsTrue(t *testing.T) {
	h := newTestAnalyzer().newHistory()
	assert.Equal(t, True, upperBound(ivar(1), ivar(1), h))
	assert.Equal(t, True, lowerBound(ivar(1), ivar(1), h))
}

func TestSimpleFormulaAnd(t *testing.T) {
	h := newTestAnalyzer().newHistory()
	f := upperBound(ivar(2), tyA, h).
		And(lowerBound(ivar(1), tyC, h)).
		And(upperBound(ivar(2), tyA, h)).
		And(upperBound(ivar(1), tyB, h))
	require.IsType(t, SimpleFormula{}, f)
	simple := f.(SimpleFormula)

	assert.Equal(t, []InferenceVar{ivar(1), ivar(2)}, simple.Vars())
	assert.Equal(t, []Type{tyA}, simple.UpperBounds(ivar(2)), "duplicate bounds are merged")
	assert.Equal(t, []Type{tyB}, simple.UpperBounds(ivar(1)))
	assert.Equal(t, []Type{tyC}, simple.LowerBounds(ivar(1)))
	assert.Empty(t, simple.LowerBounds(ivar(2)))
	assert.Equal(t, "{C <: $1, $1 <: B, $2 <: A}", f.String())
}

func TestSimpleFormulaOrKeepsLeft(t *testing.T) {
	h := newTestAnalyzer().newHistory()
	left := upperBound(ivar(1), tyA, h)
	right := upperBound(ivar(2), tyB, h)
	assert.Equal(t, left, left.Or(right))
	assert.Equal(t, left, left.Or(False))
}

func TestSimpleFormulaApplySubstitution(t *testing.T) {
	h := newTestAnalyzer().newHistory()
	f := upperBound(ivar(1), tyA, h)

	testCases := []struct {
		name     string
		sigma    Substitution
		expected string
	}{
		{"subtype", Substitution{ivar(1): tyC}, "TRUE"},
		{"other branch", Substitution{ivar(1): tyD}, "TRUE"},
		{"unrelated", Substitution{ivar(1): listOf(tyA)}, "FALSE"},
		{"supertype", Substitution{ivar(1): Any}, "FALSE"},
		{"renaming", Substitution{ivar(1): ivar(3)}, "{$3 <: A}"},
		{"other variable", Substitution{ivar(5): tyB}, "{$1 <: A}"},
		{"empty", Substitution{}, "{$1 <: A}"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.ApplySubstitution(tc.sigma).String())
		})
	}

	lower := lowerBound(ivar(1), tyB, h)
	assert.True(t, lower.ApplySubstitution(Substitution{ivar(1): tyA}).IsTrue())
	assert.True(t, lower.ApplySubstitution(Substitution{ivar(1): tyC}).IsFalse())
}

func TestApplySubstitutionReportsMalformedTypes(t *testing.T) {
	a := newTestAnalyzer()
	f, err := a.Subtype(ivar(1), tyA)
	require.NoError(t, err)

	var substituted ConstraintFormula
	require.NotPanics(t, func() {
		substituted = f.ApplySubstitution(Substitution{ivar(1): Trait("Nope")})
	})
	assert.True(t, substituted.IsFalse())
	require.True(t, a.Errors().HasError())
	assert.Equal(t, ilerr.UnknownType, a.Errors().Errors()[0].Code())

	g, err := a.Subtype(ivar(2), ObjectType)
	require.NoError(t, err)
	array := ArrayType{Elem: tyA, Extents: []ExtentRange{{Size: IntLit(3)}}}
	assert.True(t, g.ApplySubstitution(Substitution{ivar(2): array}).IsTrue(), "substituted types are normalised")
}

func TestSolvedFormula(t *testing.T) {
	solved := SolvedFormula{solution: map[InferenceVar]Type{ivar(2): tyB, ivar(1): tyA}}

	assert.True(t, solved.IsTrue())
	assert.False(t, solved.IsFalse())
	assert.Equal(t, "{$1 := A, $2 := B}", solved.String())

	m := solved.Map()
	m[ivar(3)] = tyC
	assert.Len(t, solved.Map(), 2, "Map returns a copy")

	again, err := solved.Solve()
	require.NoError(t, err)
	assert.Equal(t, solved.String(), again.String())

	h := newTestAnalyzer().newHistory()
	assert.Panics(t, func() { solved.And(True) })
	assert.Panics(t, func() { solved.Or(False) })
	assert.Panics(t, func() { solved.ApplySubstitution(Substitution{ivar(1): tyC}) })
	assert.Panics(t, func() { True.And(solved) })
	assert.Panics(t, func() { False.Or(solved) })
	assert.Panics(t, func() { upperBound(ivar(1), tyA, h).And(solved) })
	assert.Panics(t, func() { upperBound(ivar(1), tyA, h).Map() })
}
