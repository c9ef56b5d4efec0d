package types

// freshBase keeps analyzer-made variables apart from variables numbered by the caller
const freshBase uint64 = 1 << 32

// Fresher keeps track of new inference variable IDs.
// It is mutable and not suitable for concurrent use
type Fresher struct {
	freshCount uint64
}

func NewFresher() *Fresher {
	return &Fresher{freshCount: freshBase}
}

func (f *Fresher) newInferenceVar() InferenceVar {
	v := InferenceVar{ID: f.freshCount}
	f.freshCount++
	return v
}
