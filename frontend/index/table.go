// Package index keeps the type constructors declared by a program, by name.
package index

import (
	"sort"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/typeparse"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
	"github.com/stokito/fortress-lang-sub003/internal/log"
	"github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "index")

var _ types.TypeConsTable = (*Table)(nil)

// Table maps names to trait and alias declarations. A table created with
// Extend sees the declarations of its parent and may shadow them.
type Table struct {
	parent *Table // can be nil
	decls  map[string]types.TypeConsIndex
}

func NewTable() *Table {
	return &Table{decls: map[string]types.TypeConsIndex{}}
}

func (t *Table) Extend() *Table {
	return &Table{parent: t, decls: map[string]types.TypeConsIndex{}}
}

// Add declares decls in this table. A name can be declared once per table;
// every declaration is tried and the duplicates are reported together.
func (t *Table) Add(decls ...types.TypeConsIndex) *ilerr.Errors {
	var errs *ilerr.Errors
	for _, decl := range decls {
		name := decl.ConsName()
		if _, exists := t.decls[name]; exists {
			errs = errs.With(ilerr.New(ilerr.NewDuplicateDeclaration{Name: name}))
			continue
		}
		t.decls[name] = decl
		logger.Debug("declared type constructor", "name", name, "params", len(decl.StaticParams()))
	}
	return errs
}

func (t *Table) TypeCons(name string) (types.TypeConsIndex, bool) {
	for scope := t; scope != nil; scope = scope.parent {
		if decl, ok := scope.decls[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

// Names lists every declared name visible from t, sorted
func (t *Table) Names() []string {
	var names []string
	for scope := t; scope != nil; scope = scope.parent {
		for name := range scope.decls {
			names = append(names, name)
		}
	}
	data := sort.StringSlice(names)
	sort.Sort(data)
	return names[:set.Uniq(data)]
}

// Load parses declaration text and adds it to t
func (t *Table) Load(src string) *ilerr.Errors {
	decls, err := typeparse.ParseDecls(src)
	if err != nil {
		var errs *ilerr.Errors
		return errs.With(asIleError(err))
	}
	return t.Add(decls...)
}

// Load creates a table holding the declarations in src
func Load(src string) (*Table, *ilerr.Errors) {
	t := NewTable()
	errs := t.Load(src)
	return t, errs
}

// MustLoad is Load for trusted input, panicking on error
func MustLoad(src string) *Table {
	t, errs := Load(src)
	if errs.HasError() {
		panic(ilerr.FormatWithCode(errs.Errors()[0]))
	}
	return t
}

func asIleError(err error) ilerr.IleError {
	if ileErr, ok := err.(ilerr.IleError); ok {
		return ileErr
	}
	return ilerr.New(ilerr.Unclassified{From: err})
}
