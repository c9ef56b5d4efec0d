package types

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/internal/log"
)

var logger = log.DefaultLogger.With("section", "analyzer")

// Options bound the recursive subtype search
type Options struct {
	// MaxDepth is the longest chain of nested subtype queries before the search gives up
	MaxDepth int
	// MaxExpansions is the number of trait supertype expansions allowed on one path
	MaxExpansions int
	// CacheTruncated allows caching results that hit MaxDepth, MaxExpansions or a cycle.
	// Such results depend on the query path, so they are not cached by default.
	CacheTruncated bool
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:      64,
		MaxExpansions: 16,
	}
}

// TypeAnalyzer normalises types and decides subtyping between them.
//
// An analyzer and the analyzers returned by its Extend share a cache chain
// and must not be used from more than one goroutine.
type TypeAnalyzer struct {
	parent *TypeAnalyzer // can be nil
	table  TypeConsTable // can be nil
	env    StaticParamEnv
	where  []TypeConstraint
	cache  *subtypeCache
	opts   Options
	logger *slog.Logger

	*analyzerState
}

// analyzerState is shared by an analyzer and all of its extensions
type analyzerState struct {
	fresher *Fresher
	errors  *ilerr.Errors
	// truncations counts results decided by a guard or a history cycle
	truncations int
}

// NewAnalyzer creates a root analyzer over table, which may be nil when
// only the built-in traits are needed
func NewAnalyzer(table TypeConsTable, opts Options) *TypeAnalyzer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = DefaultOptions().MaxExpansions
	}
	return &TypeAnalyzer{
		table:  table,
		env:    NewStaticParamEnv(nil),
		cache:  newSubtypeCache(nil),
		opts:   opts,
		logger: logger,
		analyzerState: &analyzerState{
			fresher: NewFresher(),
		},
	}
}

// Extend returns an analyzer for a nested scope binding params and assuming where.
// Its cache reads through to the receiver's.
func (a *TypeAnalyzer) Extend(params []StaticParam, where []TypeConstraint) *TypeAnalyzer {
	child := &TypeAnalyzer{
		parent:        a,
		table:         a.table,
		env:           NewStaticParamEnv(a.env, params...),
		where:         slices.Concat(a.where, where),
		cache:         newSubtypeCache(a.cache),
		opts:          a.opts,
		logger:        a.logger.With("scope", len(params)),
		analyzerState: a.analyzerState,
	}
	return child
}

// Errors lists the malformed-input diagnostics reported so far by this
// analyzer and its extensions
func (a *TypeAnalyzer) Errors() *ilerr.Errors {
	return a.errors
}

func (a *TypeAnalyzer) NewInferenceVar() InferenceVar {
	return a.fresher.newInferenceVar()
}

func (a *TypeAnalyzer) newHistory() SubtypeHistory {
	return newSubtypeHistory(a)
}

// queryAbort unwinds a query that cannot be answered
type queryAbort struct {
	err ilerr.IleError
}

func (a *TypeAnalyzer) abort(err ilerr.IleError) {
	if ilerr.IsMalformedInput(err) {
		a.errors = a.errors.With(err)
		a.logger.Warn("malformed type", "error", ilerr.FormatWithCode(err))
	} else {
		a.logger.Error("query failed", "error", ilerr.FormatWithCode(err))
	}
	panic(queryAbort{err: err})
}

// recoverQuery turns an aborted query into the returned error.
// Any other panic is a bug and keeps unwinding.
func recoverQuery(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if abort, ok := r.(queryAbort); ok {
		*errp = abort.err
		return
	}
	panic(r)
}

// typeCons resolves name through the table, then the built-in traits
func (a *TypeAnalyzer) typeCons(name string) (TypeConsIndex, bool) {
	if a.table != nil {
		if index, ok := a.table.TypeCons(name); ok {
			return index, true
		}
	}
	if index, ok := builtinTraits[name]; ok {
		return index, true
	}
	return nil, false
}

func (a *TypeAnalyzer) mustTraitIndex(t TraitType) *TraitIndex {
	index, ok := a.typeCons(t.Name)
	if !ok {
		a.abort(ilerr.New(ilerr.NewUnknownType{Name: t.Name}))
	}
	switch index := index.(type) {
	case *TraitIndex:
		return index
	case *AliasIndex:
		a.abort(ilerr.New(ilerr.NewNotNormalized{Type: t.String()}))
	}
	panic(errors.Errorf("unexpected type constructor %T for %s", index, t.Name))
}

// Normalize rewrites t into normal form
func (a *TypeAnalyzer) Normalize(t Type) (normal Type, err error) {
	defer recoverQuery(&err)
	return a.normalize(t), nil
}

// Subtype decides s <: t after normalising both sides
func (a *TypeAnalyzer) Subtype(s, t Type) (f ConstraintFormula, err error) {
	defer recoverQuery(&err)
	return a.subtypeNormal(a.normalize(s), a.normalize(t)), nil
}

// SubtypeNormal decides s <: t for types already in normal form
func (a *TypeAnalyzer) SubtypeNormal(s, t Type) (f ConstraintFormula, err error) {
	defer recoverQuery(&err)
	return a.subtypeNormal(s, t), nil
}

// Equivalent decides s <: t and t <: s after normalising both sides
func (a *TypeAnalyzer) Equivalent(s, t Type) (f ConstraintFormula, err error) {
	defer recoverQuery(&err)
	return a.equivalentNormal(a.normalize(s), a.normalize(t)), nil
}

func (a *TypeAnalyzer) EquivalentNormal(s, t Type) (f ConstraintFormula, err error) {
	defer recoverQuery(&err)
	return a.equivalentNormal(s, t), nil
}

// Join is the least upper bound of ts, Bottom when ts is empty
func (a *TypeAnalyzer) Join(ts ...Type) (joined Type, err error) {
	defer recoverQuery(&err)
	return a.normalize(Union(ts...)), nil
}

// JoinNormal is Join for types already in normal form
func (a *TypeAnalyzer) JoinNormal(ts ...Type) (joined Type, err error) {
	defer recoverQuery(&err)
	return a.joinNormal(ts...), nil
}

// Meet is the greatest lower bound of ts, Any when ts is empty
func (a *TypeAnalyzer) Meet(ts ...Type) (met Type, err error) {
	defer recoverQuery(&err)
	return a.normalize(Intersection(ts...)), nil
}

// MeetNormal is Meet for types already in normal form
func (a *TypeAnalyzer) MeetNormal(ts ...Type) (met Type, err error) {
	defer recoverQuery(&err)
	return a.meetNormal(ts...), nil
}

func (a *TypeAnalyzer) subtypeNormal(s, t Type) (res ConstraintFormula) {
	defer func() {
		a.logger.Debug("subtype query", "sub", s, "super", t, "result", res)
	}()
	return a.sub(s, t, a.newHistory())
}

func (a *TypeAnalyzer) equivalentNormal(s, t Type) ConstraintFormula {
	h := a.newHistory()
	forward := a.sub(s, t, h)
	if forward.IsFalse() {
		return forward
	}
	return forward.And(a.sub(t, s, h))
}

func (a *TypeAnalyzer) joinNormal(ts ...Type) Type {
	return a.makeUnion(ts, a.newHistory())
}

func (a *TypeAnalyzer) meetNormal(ts ...Type) Type {
	return a.makeIntersection(ts, a.newHistory())
}

func (a *TypeAnalyzer) String() string {
	depth := 0
	for p := a.parent; p != nil; p = p.parent {
		depth++
	}
	return fmt.Sprintf("TypeAnalyzer(scope=%d, cached=%d)", depth, a.cache.size())
}
