package types

import (
	"strconv"
	"strings"

	"github.com/benbjohnson/immutable"
)

type typePair struct {
	sub, super Type
}

func (p typePair) Hash() uint64 {
	return hashOf(tagPair, p.sub.Hash(), p.super.Hash())
}

type pairHasher struct{}

func (pairHasher) Hash(p typePair) uint32 {
	h := p.Hash()
	return uint32(h ^ h>>32)
}

func (pairHasher) Equal(a, b typePair) bool {
	return Equal(a.sub, b.sub) && Equal(a.super, b.super)
}

// SubtypeHistory records the subtype queries on the current recursion path.
// It is persistent: Extend and Expand leave the receiver untouched.
type SubtypeHistory struct {
	analyzer   *TypeAnalyzer
	pairs      immutable.Set[typePair]
	expansions int
}

func newSubtypeHistory(analyzer *TypeAnalyzer) SubtypeHistory {
	return SubtypeHistory{
		analyzer: analyzer,
		pairs:    immutable.NewSet[typePair](pairHasher{}),
	}
}

// Size is the number of queries on the current path
func (h SubtypeHistory) Size() int {
	return h.pairs.Len()
}

// Expansions counts how many trait supertype expansions happened on the current path
func (h SubtypeHistory) Expansions() int {
	return h.expansions
}

func (h SubtypeHistory) Contains(sub, super Type) bool {
	return h.pairs.Has(typePair{sub, super})
}

func (h SubtypeHistory) Extend(sub, super Type) SubtypeHistory {
	h.pairs = h.pairs.Add(typePair{sub, super})
	return h
}

// Expand records one more supertype expansion
func (h SubtypeHistory) Expand() SubtypeHistory {
	h.expansions++
	return h
}

// subtypeNormal asks the owning analyzer whether sub <: super, continuing this path
func (h SubtypeHistory) subtypeNormal(sub, super Type) ConstraintFormula {
	return h.analyzer.sub(sub, super, h)
}

func (h SubtypeHistory) String() string {
	sb := &strings.Builder{}
	sb.WriteString("[")
	itr := h.pairs.Iterator()
	first := true
	for !itr.Done() {
		p, _ := itr.Next()
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(p.sub.String() + " <: " + p.super.String())
	}
	sb.WriteString("] expansions=" + strconv.Itoa(h.expansions))
	return sb.String()
}

// constrain is sub <: super, recorded as a bound when either side is an inference variable.
// Otherwise both sides are normalised and compared; failing to do so gives FALSE,
// with malformed types reported to the analyzer's diagnostics.
func (h SubtypeHistory) constrain(sub, super Type) ConstraintFormula {
	if v, ok := sub.(InferenceVar); ok {
		return upperBound(v, super, h)
	}
	if v, ok := super.(InferenceVar); ok {
		return lowerBound(v, sub, h)
	}
	f, err := h.checkedSubtype(sub, super)
	if err != nil {
		h.analyzer.logger.Debug("substituted bound not decided", "sub", sub, "super", super, "error", err)
		return False
	}
	return f
}

func (h SubtypeHistory) checkedSubtype(sub, super Type) (f ConstraintFormula, err error) {
	defer recoverQuery(&err)
	a := h.analyzer
	return h.subtypeNormal(a.normalizeIn(sub, h), a.normalizeIn(super, h)), nil
}
