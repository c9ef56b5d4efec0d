package types

// InferenceVarReplacer substitutes solved types for inference variables
type InferenceVarReplacer struct {
	solution map[InferenceVar]Type
	// dflt replaces variables missing from solution
	dflt Type
}

// NewReplacer uses solution, typically the Map of a solved formula, and
// replaces unsolved variables with dflt
func NewReplacer(solution map[InferenceVar]Type, dflt Type) *InferenceVarReplacer {
	return &InferenceVarReplacer{solution: solution, dflt: dflt}
}

func (r *InferenceVarReplacer) Replace(t Type) Type {
	free := inferenceVars(t)
	if len(free) == 0 {
		return t
	}
	sigma := make(Substitution, len(free))
	for _, v := range free {
		if solved, ok := r.solution[v]; ok {
			sigma[v] = solved
		} else {
			sigma[v] = r.dflt
		}
	}
	return substVars(t, sigma)
}

func (r *InferenceVarReplacer) ReplaceAll(ts []Type) []Type {
	return mapTypes(ts, r.Replace)
}
