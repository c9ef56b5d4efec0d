package types

import (
	"log/slog"
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"github.com/stokito/fortress-lang-sub003/util"
)

type formulaSolver struct {
	*slog.Logger
	*TypeAnalyzer
	history SubtypeHistory
}

func (a *TypeAnalyzer) solve(f SimpleFormula) (res ConstraintFormula, err error) {
	defer recoverQuery(&err)
	s := formulaSolver{
		Logger:       a.logger.With("section", "analyzer.solve"),
		TypeAnalyzer: a,
		history:      f.history,
	}
	defer func() {
		s.Debug("solved formula", "formula", f, "result", res)
	}()
	return s.solve(f), nil
}

func (s formulaSolver) solve(f SimpleFormula) ConstraintFormula {
	if cycle := s.findCycle(f); len(cycle) > 1 {
		representative := cycle[0]
		sigma := Substitution{}
		for _, v := range cycle[1:] {
			sigma[v] = representative
		}
		s.Debug("collapsing cycle", "vars", cycle, "representative", representative)

		var solved ConstraintFormula
		switch collapsed := f.ApplySubstitution(sigma).(type) {
		case SimpleFormula:
			solved = s.solve(collapsed)
		case falseFormula:
			return False
		default:
			// the cycle bounded nothing but itself
			solved = SolvedFormula{solution: map[InferenceVar]Type{representative: Any}}
		}
		if solved, ok := solved.(SolvedFormula); ok {
			if t, ok := solved.solution[representative]; ok {
				for _, v := range cycle[1:] {
					solved.solution[v] = t
				}
			}
		}
		return solved
	}
	return s.instantiate(f)
}

// findCycle returns the smallest group of variables that bound each other in a cycle,
// ordered so that the representative comes first
func (s formulaSolver) findCycle(f SimpleFormula) []InferenceVar {
	edges := map[InferenceVar][]InferenceVar{}
	for _, v := range f.Vars() {
		for _, upper := range f.UpperBounds(v) {
			if w, ok := upper.(InferenceVar); ok {
				edges[v] = append(edges[v], w)
			}
		}
		for _, lower := range f.LowerBounds(v) {
			if w, ok := lower.(InferenceVar); ok {
				edges[w] = append(edges[w], v)
			}
		}
	}
	reachable := func(from InferenceVar) *set.Set[InferenceVar] {
		seen := set.New[InferenceVar](len(edges))
		stack := &util.Stack[InferenceVar]{}
		stack.Push(from)
		for {
			v, ok := stack.Pop()
			if !ok {
				return seen
			}
			for _, w := range edges[v] {
				if seen.Insert(w) {
					stack.Push(w)
				}
			}
		}
	}

	var best []InferenceVar
	for _, v := range f.Vars() {
		fromV := reachable(v)
		if !fromV.Contains(v) {
			continue
		}
		component := set.NewTreeSet[InferenceVar](compareVars)
		for w := range fromV.Items() {
			if reachable(w).Contains(v) {
				component.Insert(w)
			}
		}
		if component.Size() > 1 && (best == nil || component.Size() < len(best)) {
			best = component.Slice()
		}
	}
	return best
}

// varBounds is the interim state of one variable while solving
type varBounds struct {
	upper, lower []Type
	// lub and glb are nil when the variable has no bound on that side
	lub, glb Type
	forced   bool
}

func (s formulaSolver) instantiate(f SimpleFormula) ConstraintFormula {
	vars := f.Vars()
	bounds := make(map[InferenceVar]*varBounds, len(vars))
	for _, v := range vars {
		bounds[v] = &varBounds{upper: f.UpperBounds(v), lower: f.LowerBounds(v)}
	}
	// a variable only mentioned in the bounds of others is bounded by Any
	for _, v := range slices.Clone(vars) {
		for _, t := range slices.Concat(bounds[v].upper, bounds[v].lower) {
			for _, w := range inferenceVars(t) {
				if _, ok := bounds[w]; !ok {
					bounds[w] = &varBounds{upper: []Type{Any}}
					vars = append(vars, w)
				}
			}
		}
	}
	slices.SortFunc(vars, compareVars)
	closed := func(t Type) bool {
		return t != nil && !slices.ContainsFunc(inferenceVars(t), func(w InferenceVar) bool {
			_, ok := bounds[w]
			return ok
		})
	}
	resolved := func(b *varBounds) bool {
		return (b.lub == nil || closed(b.lub)) && (b.glb == nil || closed(b.glb))
	}

	for {
		s.closeBounds(vars, bounds, closed)
		i := slices.IndexFunc(vars, func(v InferenceVar) bool { return !resolved(bounds[v]) })
		if i < 0 {
			break
		}
		s.force(vars[i], bounds)
	}

	solution := make(map[InferenceVar]Type, len(vars))
	for _, v := range vars {
		b := bounds[v]
		switch {
		case b.lub != nil && b.glb != nil:
			if !s.sub(b.glb, b.lub, s.history).IsTrue() {
				s.Debug("unsatisfiable bounds", "var", v, "glb", b.glb, "lub", b.lub)
				return False
			}
			solution[v] = s.makeIntersection([]Type{b.glb, b.lub}, s.history)
		case b.lub != nil:
			solution[v] = b.lub
		case b.glb != nil:
			solution[v] = b.glb
		default:
			panic(errors.Errorf("inference variable %s has neither upper nor lower bounds", v))
		}
	}
	return SolvedFormula{solution: solution}
}

// closeBounds recomputes the LUB and GLB of every variable, substituting the
// closed interim values of the other variables, until nothing changes
func (s formulaSolver) closeBounds(vars []InferenceVar, bounds map[InferenceVar]*varBounds, closed func(Type) bool) {
	for round := 0; round <= len(vars); round++ {
		upperValues, lowerValues := Substitution{}, Substitution{}
		for _, v := range vars {
			b := bounds[v]
			for _, candidate := range []Type{b.lub, b.glb} {
				if closed(candidate) {
					upperValues[v] = candidate
					break
				}
			}
			for _, candidate := range []Type{b.glb, b.lub} {
				if closed(candidate) {
					lowerValues[v] = candidate
					break
				}
			}
		}

		changed := false
		for _, v := range vars {
			b := bounds[v]
			if b.forced {
				continue
			}
			var lub, glb Type
			if len(b.upper) > 0 {
				lub = s.makeIntersection(s.substituteBounds(b.upper, v, upperValues), s.history)
			}
			if len(b.lower) > 0 {
				glb = s.makeUnion(s.substituteBounds(b.lower, v, lowerValues), s.history)
			}
			changed = changed || !sameBound(lub, b.lub) || !sameBound(glb, b.glb)
			b.lub, b.glb = lub, glb
		}
		if !changed {
			return
		}
	}
}

func (s formulaSolver) substituteBounds(ts []Type, self InferenceVar, values Substitution) []Type {
	values = without(values, self)
	return mapTypes(ts, func(t Type) Type {
		substituted := substVars(t, values)
		if Equal(substituted, t) {
			return t
		}
		return s.normalizeIn(substituted, s.history)
	})
}

func without(sigma Substitution, v InferenceVar) Substitution {
	if _, ok := sigma[v]; !ok {
		return sigma
	}
	rest := make(Substitution, len(sigma))
	for k, t := range sigma {
		if k != v {
			rest[k] = t
		}
	}
	return rest
}

func sameBound(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}

// force resolves v while other variables still depend on it: references to
// v itself become a fixed point and the other variables are widened
func (s formulaSolver) force(v InferenceVar, bounds map[InferenceVar]*varBounds) {
	b := bounds[v]
	widen := func(t Type, dflt Type) Type {
		if t == nil {
			return nil
		}
		others := Substitution{}
		for w := range bounds {
			if w != v {
				others[w] = dflt
			}
		}
		t = substVars(t, others)
		if mentions(t, v) {
			binder := s.NewInferenceVar()
			t = FixedPointType{Binder: binder, Body: substVars(t, Substitution{v: binder})}
		}
		return s.normalizeIn(t, s.history)
	}
	b.lub, b.glb = widen(b.lub, Any), widen(b.glb, Bottom)
	b.forced = true
	s.Debug("forced inference variable", "var", v, "lub", b.lub, "glb", b.glb)
}
