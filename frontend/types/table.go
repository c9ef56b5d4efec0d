package types

// TypeConsTable resolves type constructor names to their declarations
type TypeConsTable interface {
	TypeCons(name string) (TypeConsIndex, bool)
}

// TypeConsIndex is either a *TraitIndex or an *AliasIndex
type TypeConsIndex interface {
	ConsName() string
	// StaticParams are the parameters instantiated by explicit static arguments
	StaticParams() []StaticParam
	isTypeCons()
}

var (
	_ TypeConsIndex = (*TraitIndex)(nil)
	_ TypeConsIndex = (*AliasIndex)(nil)
)

type ConstraintKind int

const (
	// ConstraintExtends is Left <: Right
	ConstraintExtends ConstraintKind = iota
	// ConstraintEquals is Left = Right
	ConstraintEquals
)

// TypeConstraint is one entry of a where clause
type TypeConstraint struct {
	Kind        ConstraintKind
	Left, Right Type
}

func (c TypeConstraint) String() string {
	if c.Kind == ConstraintEquals {
		return c.Left.String() + " = " + c.Right.String()
	}
	return c.Left.String() + " <: " + c.Right.String()
}

// ExtendsClause is one supertype of a trait, usable only when Where holds
type ExtendsClause struct {
	Super TraitType
	Where []TypeConstraint
}

type TraitIndex struct {
	Name   string
	Params []StaticParam
	// HiddenParams are not given by static arguments: they are existentially
	// quantified in the extends clauses
	HiddenParams []StaticParam
	Extends      []ExtendsClause
	// Where constrains the trait as a whole and applies to every extends clause
	Where   []TypeConstraint
	Methods []string
}

func (t *TraitIndex) ConsName() string            { return t.Name }
func (t *TraitIndex) StaticParams() []StaticParam { return t.Params }
func (t *TraitIndex) isTypeCons()                 {}

type AliasIndex struct {
	Name   string
	Params []StaticParam
	Target Type
}

func (a *AliasIndex) ConsName() string            { return a.Name }
func (a *AliasIndex) StaticParams() []StaticParam { return a.Params }
func (a *AliasIndex) isTypeCons()                 {}

// StaticParamEnv resolves static parameters in scope
type StaticParamEnv interface {
	StaticParam(name string) (StaticParam, bool)
}

type paramEnv struct {
	parent StaticParamEnv // can be nil
	params map[string]StaticParam
}

// NewStaticParamEnv returns an environment binding params, falling back to parent (which may be nil)
func NewStaticParamEnv(parent StaticParamEnv, params ...StaticParam) StaticParamEnv {
	env := &paramEnv{parent: parent, params: make(map[string]StaticParam, len(params))}
	for _, p := range params {
		env.params[p.Name] = p
	}
	return env
}

func (e *paramEnv) StaticParam(name string) (StaticParam, bool) {
	if p, ok := e.params[name]; ok {
		return p, true
	}
	if e.parent != nil {
		return e.parent.StaticParam(name)
	}
	return StaticParam{}, false
}
