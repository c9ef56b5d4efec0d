package types

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
)

// ConstraintFormula is the result of a subtype query: True, False, or the
// bounds on inference variables under which the query holds.
// Formulas are immutable.
type ConstraintFormula interface {
	fmt.Stringer
	IsTrue() bool
	IsFalse() bool
	And(other ConstraintFormula) ConstraintFormula
	Or(other ConstraintFormula) ConstraintFormula
	ApplySubstitution(sigma Substitution) ConstraintFormula
	// Solve finds an instantiation of the bounded inference variables.
	// The error reports a hard failure of a subtype query made while solving.
	Solve() (ConstraintFormula, error)
	// Map is the instantiation found by Solve
	Map() map[InferenceVar]Type
	isFormula()
}

var (
	_ ConstraintFormula = trueFormula{}
	_ ConstraintFormula = falseFormula{}
	_ ConstraintFormula = SimpleFormula{}
	_ ConstraintFormula = SolvedFormula{}
)

var (
	True  ConstraintFormula = trueFormula{}
	False ConstraintFormula = falseFormula{}
)

func formulaOf(b bool) ConstraintFormula {
	if b {
		return True
	}
	return False
}

func mustNotBeSolved(fs ...ConstraintFormula) {
	for _, f := range fs {
		if _, ok := f.(SolvedFormula); ok {
			panic(errors.Errorf("solved formula %s cannot be combined further", f))
		}
	}
}

type trueFormula struct{}

func (trueFormula) isFormula()     {}
func (trueFormula) String() string { return "TRUE" }
func (trueFormula) IsTrue() bool   { return true }
func (trueFormula) IsFalse() bool  { return false }
func (f trueFormula) And(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	return other
}
func (f trueFormula) Or(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	return f
}
func (f trueFormula) ApplySubstitution(Substitution) ConstraintFormula { return f }
func (f trueFormula) Solve() (ConstraintFormula, error)                { return f, nil }
func (trueFormula) Map() map[InferenceVar]Type                         { return map[InferenceVar]Type{} }

type falseFormula struct{}

func (falseFormula) isFormula()     {}
func (falseFormula) String() string { return "FALSE" }
func (falseFormula) IsTrue() bool   { return false }
func (falseFormula) IsFalse() bool  { return true }
func (f falseFormula) And(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	return f
}
func (f falseFormula) Or(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	return other
}
func (f falseFormula) ApplySubstitution(Substitution) ConstraintFormula { return f }
func (f falseFormula) Solve() (ConstraintFormula, error)                { return f, nil }
func (falseFormula) Map() map[InferenceVar]Type                         { return nil }

type ivarHasher struct{}

func (ivarHasher) Hash(v InferenceVar) uint32 {
	h := v.Hash()
	return uint32(h ^ h>>32)
}

func (ivarHasher) Equal(a, b InferenceVar) bool { return a == b }

func compareVars(a, b InferenceVar) int {
	if a.Canonical != b.Canonical {
		if a.Canonical {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.ID, b.ID)
}

// boundMap is a persistent multimap from an inference variable to its bounds
type boundMap = *immutable.Map[InferenceVar, []Type]

func emptyBounds() boundMap {
	return immutable.NewMap[InferenceVar, []Type](ivarHasher{})
}

// addBounds returns m with ts added to the bounds of v, skipping duplicates
func addBounds(m boundMap, v InferenceVar, ts ...Type) boundMap {
	existing, _ := m.Get(v)
	merged := slices.Clone(existing)
	for _, t := range ts {
		if !slices.ContainsFunc(merged, func(other Type) bool { return Equal(t, other) }) {
			merged = append(merged, t)
		}
	}
	if len(merged) == len(existing) {
		return m
	}
	return m.Set(v, merged)
}

func sortedKeys(m boundMap) []InferenceVar {
	keys := make([]InferenceVar, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareVars)
	return keys
}

// SimpleFormula is a conjunction of upper and lower bounds on inference variables
type SimpleFormula struct {
	upper   boundMap
	lower   boundMap
	history SubtypeHistory
}

// upperBound is the formula v <: t
func upperBound(v InferenceVar, t Type, h SubtypeHistory) ConstraintFormula {
	if Equal(v, t) {
		return True
	}
	return SimpleFormula{upper: addBounds(emptyBounds(), v, t), lower: emptyBounds(), history: h}
}

// lowerBound is the formula t <: v
func lowerBound(v InferenceVar, t Type, h SubtypeHistory) ConstraintFormula {
	if Equal(v, t) {
		return True
	}
	return SimpleFormula{upper: emptyBounds(), lower: addBounds(emptyBounds(), v, t), history: h}
}

func (SimpleFormula) isFormula()    {}
func (SimpleFormula) IsTrue() bool  { return false }
func (SimpleFormula) IsFalse() bool { return false }

// UpperBounds lists the upper bounds recorded for v
func (f SimpleFormula) UpperBounds(v InferenceVar) []Type {
	bounds, _ := f.upper.Get(v)
	return slices.Clone(bounds)
}

// LowerBounds lists the lower bounds recorded for v
func (f SimpleFormula) LowerBounds(v InferenceVar) []Type {
	bounds, _ := f.lower.Get(v)
	return slices.Clone(bounds)
}

// Vars lists the bounded inference variables in order
func (f SimpleFormula) Vars() []InferenceVar {
	vars := sortedKeys(f.upper)
	for _, v := range sortedKeys(f.lower) {
		if !slices.Contains(vars, v) {
			vars = append(vars, v)
		}
	}
	slices.SortFunc(vars, compareVars)
	return vars
}

// formulaVars lists the variables a formula bounds and the free variables of its bounds
func formulaVars(f ConstraintFormula) []InferenceVar {
	simple, ok := f.(SimpleFormula)
	if !ok {
		return nil
	}
	vars := simple.Vars()
	for _, m := range []boundMap{simple.upper, simple.lower} {
		itr := m.Iterator()
		for !itr.Done() {
			_, bounds, _ := itr.Next()
			for _, b := range bounds {
				for _, v := range inferenceVars(b) {
					if !slices.Contains(vars, v) {
						vars = append(vars, v)
					}
				}
			}
		}
	}
	return vars
}

func (f SimpleFormula) And(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	switch other := other.(type) {
	case trueFormula:
		return f
	case falseFormula:
		return other
	case SimpleFormula:
		merged := f
		for _, v := range sortedKeys(other.upper) {
			bounds, _ := other.upper.Get(v)
			merged.upper = addBounds(merged.upper, v, bounds...)
		}
		for _, v := range sortedKeys(other.lower) {
			bounds, _ := other.lower.Get(v)
			merged.lower = addBounds(merged.lower, v, bounds...)
		}
		return merged
	}
	panic(errors.Errorf("unexpected formula %T", other))
}

// Or keeps the receiver when both sides carry bounds, which under-approximates the disjunction
func (f SimpleFormula) Or(other ConstraintFormula) ConstraintFormula {
	mustNotBeSolved(other)
	if other.IsTrue() {
		return other
	}
	return f
}

// ApplySubstitution renames bounded variables and rewrites their bounds.
// A variable substituted by a type other than a variable turns its bounds
// into subtype queries on that type; a query that cannot be answered is FALSE.
func (f SimpleFormula) ApplySubstitution(sigma Substitution) ConstraintFormula {
	if len(sigma) == 0 {
		return f
	}
	result := True
	for _, v := range sortedKeys(f.upper) {
		bounds, _ := f.upper.Get(v)
		sub := substVars(v, sigma)
		for _, b := range bounds {
			result = result.And(f.history.constrain(sub, substVars(b, sigma)))
			if result.IsFalse() {
				return result
			}
		}
	}
	for _, v := range sortedKeys(f.lower) {
		bounds, _ := f.lower.Get(v)
		super := substVars(v, sigma)
		for _, b := range bounds {
			result = result.And(f.history.constrain(substVars(b, sigma), super))
			if result.IsFalse() {
				return result
			}
		}
	}
	return result
}

// withHistory rehomes the formula onto the path described by h
func (f SimpleFormula) withHistory(h SubtypeHistory) SimpleFormula {
	f.history = h
	return f
}

func (f SimpleFormula) Solve() (ConstraintFormula, error) {
	return f.history.analyzer.solve(f)
}

func (f SimpleFormula) Map() map[InferenceVar]Type {
	panic(errors.Errorf("formula %s has not been solved", f))
}

func (f SimpleFormula) String() string {
	var parts []string
	for _, v := range f.Vars() {
		lower, _ := f.lower.Get(v)
		for _, b := range lower {
			parts = append(parts, b.String()+" <: "+v.String())
		}
		upper, _ := f.upper.Get(v)
		for _, b := range upper {
			parts = append(parts, v.String()+" <: "+b.String())
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SolvedFormula is the terminal result of Solve
type SolvedFormula struct {
	solution map[InferenceVar]Type
}

func (SolvedFormula) isFormula()    {}
func (SolvedFormula) IsTrue() bool  { return true }
func (SolvedFormula) IsFalse() bool { return false }
func (f SolvedFormula) And(ConstraintFormula) ConstraintFormula {
	panic(errors.Errorf("solved formula %s cannot be combined further", f))
}
func (f SolvedFormula) Or(ConstraintFormula) ConstraintFormula {
	panic(errors.Errorf("solved formula %s cannot be combined further", f))
}
func (f SolvedFormula) ApplySubstitution(Substitution) ConstraintFormula {
	panic(errors.Errorf("solved formula %s cannot be substituted", f))
}
func (f SolvedFormula) Solve() (ConstraintFormula, error) { return f, nil }
func (f SolvedFormula) Map() map[InferenceVar]Type        { return maps.Clone(f.solution) }

func (f SolvedFormula) String() string {
	vars := slices.SortedFunc(maps.Keys(f.solution), compareVars)
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String() + " := " + f.solution[v].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
