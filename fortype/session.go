// Package fortype answers subtyping, normalisation and inference queries
// about types written in text, against a set of trait and alias declarations.
package fortype

import (
	"io/fs"

	"github.com/pkg/errors"
	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/index"
	"github.com/stokito/fortress-lang-sub003/frontend/typeparse"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
	"github.com/stokito/fortress-lang-sub003/internal/log"
)

var sessionLogger = log.DefaultLogger.With("section", "cli.session")

// Session holds the declarations queries are answered against.
// Sessions are not safe for concurrent use.
type Session struct {
	table    *index.Table
	analyzer *types.TypeAnalyzer
}

// NewSession loads the declarations in decls. The returned errors report
// malformed declarations; the session is usable regardless.
func NewSession(decls string, opts types.Options) (*Session, *ilerr.Errors) {
	table, errs := index.Load(decls)
	sessionLogger.Debug("loaded declarations", "names", table.Names(), "errors", errs)
	return &Session{table: table, analyzer: types.NewAnalyzer(table, opts)}, errs
}

// LoadSession reads the declarations from file in dir
func LoadSession(dir fs.FS, file string, opts types.Options) (*Session, *ilerr.Errors, error) {
	content, err := fs.ReadFile(dir, file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not read declarations from %s", file)
	}
	s, errs := NewSession(string(content), opts)
	return s, errs, nil
}

// Names lists the declared type constructors
func (s *Session) Names() []string {
	return s.table.Names()
}

// Diagnostics are the malformed types reported while answering queries
func (s *Session) Diagnostics() *ilerr.Errors {
	return s.analyzer.Errors()
}

func (s *Session) parseAll(srcs []string) ([]types.Type, error) {
	ts := make([]types.Type, len(srcs))
	for i, src := range srcs {
		t, err := typeparse.ParseType(src)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse type %q", src)
		}
		ts[i] = t
	}
	return ts, nil
}

// Check decides whether sub is a subtype of super
func (s *Session) Check(sub, super string) (types.ConstraintFormula, error) {
	ts, err := s.parseAll([]string{sub, super})
	if err != nil {
		return nil, err
	}
	return s.analyzer.Subtype(ts[0], ts[1])
}

// Equivalent decides whether a and b are subtypes of each other
func (s *Session) Equivalent(a, b string) (types.ConstraintFormula, error) {
	ts, err := s.parseAll([]string{a, b})
	if err != nil {
		return nil, err
	}
	return s.analyzer.Equivalent(ts[0], ts[1])
}

func (s *Session) Normalize(src string) (types.Type, error) {
	ts, err := s.parseAll([]string{src})
	if err != nil {
		return nil, err
	}
	return s.analyzer.Normalize(ts[0])
}

func (s *Session) Join(srcs ...string) (types.Type, error) {
	ts, err := s.parseAll(srcs)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Join(ts...)
}

func (s *Session) Meet(srcs ...string) (types.Type, error) {
	ts, err := s.parseAll(srcs)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Meet(ts...)
}

// Solve conjoins constraints such as `$1 <: Int` and solves the inference
// variables they mention. The result is FALSE or a solved formula.
func (s *Session) Solve(constraints ...string) (types.ConstraintFormula, error) {
	formula := types.True
	for _, src := range constraints {
		c, err := typeparse.ParseConstraint(src)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse constraint %q", src)
		}
		var f types.ConstraintFormula
		if c.Kind == types.ConstraintEquals {
			f, err = s.analyzer.Equivalent(c.Left, c.Right)
		} else {
			f, err = s.analyzer.Subtype(c.Left, c.Right)
		}
		if err != nil {
			return nil, err
		}
		formula = formula.And(f)
		if formula.IsFalse() {
			return formula, nil
		}
	}
	return formula.Solve()
}
