package typeparse

import (
	"github.com/stokito/fortress-lang-sub003/frontend/types"
)

var staticKinds = map[string]types.StaticKind{
	"type": types.KindType,
	"int":  types.KindInt,
	"nat":  types.KindNat,
	"bool": types.KindBool,
	"dim":  types.KindDim,
	"unit": types.KindUnit,
	"opr":  types.KindOp,
}

// ParseDecls reads trait and alias declarations:
//
//	trait B extends {A}
//	trait C[\T, n: nat, hidden U\] extends {B[\T\] where {U <: T}, D} where {T <: A}
//	alias Pair[\T\] = (T, T)
//
// Declarations may be separated by newlines or semicolons.
func ParseDecls(src string) ([]types.TypeConsIndex, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return run(p, func() []types.TypeConsIndex {
		var decls []types.TypeConsIndex
		for p.peek().kind != tokEOF {
			if p.accept(";") {
				continue
			}
			decls = append(decls, p.parseDecl())
		}
		return decls
	})
}

func (p *parser) parseDecl() types.TypeConsIndex {
	switch {
	case p.accept("trait"):
		return p.parseTrait()
	case p.accept("alias"):
		return p.parseAlias()
	}
	p.fail("expected 'trait' or 'alias' but found %s", p.peek())
	return nil
}

func (p *parser) parseTrait() *types.TraitIndex {
	trait := &types.TraitIndex{Name: p.expectName()}
	var all []types.StaticParam
	var hidden map[string]bool
	if p.accept(`[\`) {
		all, hidden = p.parseStaticParams()
	}
	for _, param := range all {
		if hidden[param.Name] {
			trait.HiddenParams = append(trait.HiddenParams, param)
		} else {
			trait.Params = append(trait.Params, param)
		}
	}
	p.pushScope(all)
	defer p.popScope()

	if p.accept("extends") {
		p.expect("{")
		for !p.accept("}") {
			if len(trait.Extends) > 0 {
				p.expect(",")
			}
			trait.Extends = append(trait.Extends, p.parseExtendsClause())
		}
	}
	if p.accept("where") {
		trait.Where = p.parseWhere()
	}
	return trait
}

func (p *parser) parseExtendsClause() types.ExtendsClause {
	super, ok := p.parsePrimary().(types.TraitType)
	if !ok {
		p.fail("a trait can only extend traits")
	}
	clause := types.ExtendsClause{Super: super}
	if p.accept("where") {
		clause.Where = p.parseWhere()
	}
	return clause
}

func (p *parser) parseWhere() []types.TypeConstraint {
	p.expect("{")
	var where []types.TypeConstraint
	for !p.accept("}") {
		if len(where) > 0 {
			p.expect(",")
		}
		where = append(where, p.parseConstraint())
	}
	return where
}

func (p *parser) parseAlias() *types.AliasIndex {
	alias := &types.AliasIndex{Name: p.expectName()}
	if p.accept(`[\`) {
		var hidden map[string]bool
		alias.Params, hidden = p.parseStaticParams()
		if len(hidden) > 0 {
			p.fail("aliases cannot have hidden parameters")
		}
	}
	p.expect("=")
	p.pushScope(alias.Params)
	defer p.popScope()
	alias.Target = p.parseType()
	return alias
}

// parseStaticParams reads the parameter list after `[\` up to and including `\]`:
//
//	T extends {A}, n: nat, hidden U
//
// hidden holds the names of the parameters marked hidden.
func (p *parser) parseStaticParams() (params []types.StaticParam, hidden map[string]bool) {
	hidden = map[string]bool{}
	for !p.accept(`\]`) {
		if len(params) > 0 {
			p.expect(",")
		}
		isHidden := p.accept("hidden")
		param := types.StaticParam{Name: p.expectName(), Kind: types.KindType}
		if p.accept(":") {
			kindTok := p.peek()
			kind, ok := staticKinds[p.expectName()]
			if !ok {
				p.fail("unknown static parameter kind %s", kindTok)
			}
			param.Kind = kind
		}
		if p.accept("extends") {
			if param.Kind != types.KindType {
				p.fail("only type parameters can have bounds")
			}
			p.expect("{")
			// bounds may mention the parameters declared so far
			p.pushScope(append(params, param))
			param.Extends = p.parseTypeList("}")
			p.popScope()
		}
		if isHidden {
			hidden[param.Name] = true
		}
		params = append(params, param)
	}
	return params, hidden
}
