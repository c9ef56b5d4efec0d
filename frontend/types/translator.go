package types

import "slices"

// varTranslator renames the inference variables of a query to canonical
// variables numbered from 0, in order of first occurrence, and back.
type varTranslator struct {
	forward Substitution
	inverse Substitution
}

func newVarTranslator(ts ...Type) *varTranslator {
	tr := &varTranslator{forward: Substitution{}, inverse: Substitution{}}
	for _, t := range ts {
		for _, v := range inferenceVars(t) {
			if _, ok := tr.forward[v]; ok {
				continue
			}
			canonical := InferenceVar{ID: uint64(len(tr.forward)), Canonical: true}
			tr.forward[v] = canonical
			tr.inverse[canonical] = v
		}
	}
	return tr
}

func (tr *varTranslator) canonicalizeVars(t Type) Type {
	return substVars(t, tr.forward)
}

func (tr *varTranslator) revertVars(t Type) Type {
	return substVars(t, tr.inverse)
}

func (tr *varTranslator) canonicalizeFormula(f ConstraintFormula) ConstraintFormula {
	return f.ApplySubstitution(tr.forward)
}

func (tr *varTranslator) revertFormula(f ConstraintFormula) ConstraintFormula {
	return f.ApplySubstitution(tr.inverse)
}

// covers reports whether tr renames every inference variable of f
func (tr *varTranslator) covers(f ConstraintFormula) bool {
	return !slices.ContainsFunc(formulaVars(f), func(v InferenceVar) bool {
		_, ok := tr.forward[v]
		return !ok
	})
}
