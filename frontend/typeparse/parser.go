// Package typeparse reads types, subtype constraints and trait and alias
// declarations from text.
package typeparse

import (
	"fmt"
	"strconv"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
)

type parser struct {
	tokens []token
	pos    int
	// scopes holds the static parameter names visible at each nesting level
	scopes []map[string]types.StaticKind
}

// bailout unwinds the parser on the first syntax error
type bailout struct {
	err ilerr.IleError
}

func newParser(src string, params ...types.StaticParam) (p *parser, err error) {
	tokens, bad := tokenize(src)
	if bad != nil {
		return nil, parseError(*bad, "unexpected character "+bad.String())
	}
	p = &parser{tokens: tokens}
	p.pushScope(params)
	return p, nil
}

// run calls parse and turns a bailout into the returned error
func run[T any](p *parser, parse func() T) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	res = parse()
	p.expectEOF()
	return res, nil
}

// ParseType reads a single type. Names of params are read as static parameter
// references, every other name as a trait.
func ParseType(src string, params ...types.StaticParam) (types.Type, error) {
	p, err := newParser(src, params...)
	if err != nil {
		return nil, err
	}
	return run(p, p.parseType)
}

// MustParseType is ParseType for trusted input, panicking on error
func MustParseType(src string, params ...types.StaticParam) types.Type {
	t, err := ParseType(src, params...)
	if err != nil {
		panic(fmt.Sprintf("parsing %q: %s", src, err))
	}
	return t
}

// ParseConstraint reads `S <: T` or `S = T`
func ParseConstraint(src string, params ...types.StaticParam) (types.TypeConstraint, error) {
	p, err := newParser(src, params...)
	if err != nil {
		return types.TypeConstraint{}, err
	}
	return run(p, p.parseConstraint)
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(i int) token {
	if p.pos+i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+i]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// at reports whether the next token is the punctuation or keyword text
func (p *parser) at(text string) bool {
	tok := p.peek()
	return tok.kind != tokEOF && tok.kind != tokInt && tok.text() == text
}

func (p *parser) accept(text string) bool {
	if p.at(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) token {
	if !p.at(text) {
		p.fail("expected '%s' but found %s", text, p.peek())
	}
	return p.advance()
}

func (p *parser) expectName() string {
	tok := p.peek()
	if tok.kind != tokName {
		p.fail("expected a name but found %s", tok)
	}
	return p.advance().text()
}

func (p *parser) expectEOF() {
	if tok := p.peek(); tok.kind != tokEOF {
		p.fail("unexpected %s", tok)
	}
}

func (p *parser) fail(format string, args ...any) {
	panic(bailout{err: parseError(p.peek(), fmt.Sprintf(format, args...))})
}

// parseError reports a syntax error at tok, with a 1-based column
func parseError(tok token, msg string) ilerr.IleError {
	return ilerr.New(ilerr.NewParse{
		Offset:        tok.GetStart(),
		Line:          tok.GetLine(),
		Column:        tok.GetColumn() + 1,
		ParserMessage: msg,
	})
}

func (p *parser) pushScope(params []types.StaticParam) {
	scope := make(map[string]types.StaticKind, len(params))
	for _, param := range params {
		scope[param.Name] = param.Kind
	}
	p.scopes = append(p.scopes, scope)
}

func (p *parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *parser) lookupParam(name string) (types.StaticKind, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if kind, ok := p.scopes[i][name]; ok {
			return kind, true
		}
	}
	return 0, false
}

func (p *parser) parseConstraint() types.TypeConstraint {
	left := p.parseType()
	kind := types.ConstraintExtends
	if p.accept("=") {
		kind = types.ConstraintEquals
	} else {
		p.expect("<:")
	}
	return types.TypeConstraint{Kind: kind, Left: left, Right: p.parseType()}
}

// parseType reads an arrow, possibly generic:
//
//	[\T\] T -> T throws {E} io
func (p *parser) parseType() types.Type {
	var params []types.StaticParam
	if p.at(`[\`) {
		p.advance()
		var hidden map[string]bool
		params, hidden = p.parseStaticParams()
		if len(hidden) > 0 {
			p.fail("generic arrows cannot have hidden parameters")
		}
		p.pushScope(params)
		defer p.popScope()
	}
	domain := p.parseUnion()
	if !p.accept("->") {
		if params != nil {
			p.fail("static parameters must be followed by an arrow type")
		}
		return domain
	}
	arrow := types.ArrowType{StaticParams: params, Domain: domain, Range: p.parseType()}
	if p.accept("throws") {
		p.expect("{")
		arrow.Effect.Throws = p.parseTypeList("}")
	}
	arrow.Effect.IO = p.accept("io")
	return arrow
}

func (p *parser) parseTypeList(closing string) []types.Type {
	var ts []types.Type
	for !p.accept(closing) {
		if len(ts) > 0 {
			p.expect(",")
		}
		ts = append(ts, p.parseType())
	}
	return ts
}

func (p *parser) parseUnion() types.Type {
	elems := []types.Type{p.parseIntersection()}
	for p.accept("|") {
		elems = append(elems, p.parseIntersection())
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return types.Union(elems...)
}

func (p *parser) parseIntersection() types.Type {
	elems := []types.Type{p.parsePostfix()}
	for p.accept("&") {
		elems = append(elems, p.parsePostfix())
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return types.Intersection(elems...)
}

// parsePostfix reads array and matrix sugar: T[n], T[b#n, m], T^(n x m)
func (p *parser) parsePostfix() types.Type {
	t := p.parsePrimary()
	for {
		switch {
		case p.accept("["):
			var extents []types.ExtentRange
			for !p.accept("]") {
				if len(extents) > 0 {
					p.expect(",")
				}
				extents = append(extents, p.parseExtent())
			}
			t = types.ArrayType{Elem: t, Extents: extents}
		case p.accept("^"):
			p.expect("(")
			first := p.parseExtent()
			if p.peek().text() != "x" {
				p.fail("expected 'x' between matrix dimensions but found %s", p.peek())
			}
			p.advance()
			second := p.parseExtent()
			p.expect(")")
			t = types.MatrixType{Elem: t, Extents: []types.ExtentRange{first, second}}
		default:
			return t
		}
	}
}

func (p *parser) parseExtent() types.ExtentRange {
	first := p.parseIntArg()
	if p.accept("#") {
		return types.ExtentRange{Base: first, Size: p.parseIntArg()}
	}
	return types.ExtentRange{Size: first}
}

func (p *parser) parseIntArg() types.StaticArg {
	tok := p.peek()
	switch tok.kind {
	case tokInt:
		p.advance()
		v, err := strconv.ParseInt(tok.text(), 10, 64)
		if err != nil {
			p.fail("invalid integer %s", tok)
		}
		return types.IntLit(v)
	case tokName:
		p.advance()
		return types.IntArg{Name: tok.text()}
	}
	p.fail("expected an integer or a name but found %s", tok)
	return nil
}

func (p *parser) parsePrimary() types.Type {
	tok := p.peek()
	switch {
	case p.accept("("):
		return p.parseTuple()
	case p.accept("$"):
		idTok := p.advance()
		id, err := strconv.ParseUint(idTok.text(), 10, 64)
		if idTok.kind != tokInt || err != nil {
			p.fail("expected an inference variable number but found %s", idTok)
		}
		return types.InferenceVar{ID: id}
	case tok.kind == tokName:
		p.advance()
		return p.parseNamed(tok.text())
	}
	p.fail("expected a type but found %s", tok)
	return nil
}

func (p *parser) parseNamed(name string) types.Type {
	switch name {
	case "Any":
		return types.Any
	case "Bottom":
		return types.Bottom
	case "fix":
		p.expect("$")
		binder := p.parseIntArg()
		lit, ok := binder.(types.IntArg)
		if !ok || lit.Name != "" || lit.Value < 0 {
			p.fail("expected a fixed point binder")
		}
		p.expect(".")
		return types.FixedPointType{Binder: types.InferenceVar{ID: uint64(lit.Value)}, Body: p.parseType()}
	}
	if _, ok := p.lookupParam(name); ok && !p.at(`[\`) {
		return types.VarType{Name: name}
	}
	trait := types.TraitType{Name: name}
	if p.accept(`[\`) {
		for !p.accept(`\]`) {
			if len(trait.Args) > 0 {
				p.expect(",")
			}
			trait.Args = append(trait.Args, p.parseStaticArg())
		}
	}
	return trait
}

func (p *parser) parseTuple() types.Type {
	var tuple types.TupleType
	for !p.accept(")") {
		if len(tuple.Elements) > 0 || tuple.VarArgs != nil || len(tuple.Keywords) > 0 {
			p.expect(",")
		}
		if p.peek().kind == tokName && p.peekAt(1).text() == "=" {
			name := p.advance().text()
			p.advance()
			tuple.Keywords = append(tuple.Keywords, types.KeywordType{Name: name, Type: p.parseType()})
			continue
		}
		elem := p.parseType()
		if p.accept("...") {
			if tuple.VarArgs != nil {
				p.fail("a tuple has at most one varargs entry")
			}
			tuple.VarArgs = elem
			continue
		}
		if tuple.VarArgs != nil || len(tuple.Keywords) > 0 {
			p.fail("positional entries must come before varargs and keywords")
		}
		tuple.Elements = append(tuple.Elements, elem)
	}
	if len(tuple.Elements) == 0 && tuple.VarArgs == nil && len(tuple.Keywords) == 0 {
		return types.Void
	}
	if len(tuple.Elements) == 1 && tuple.VarArgs == nil && len(tuple.Keywords) == 0 {
		return tuple.Elements[0]
	}
	return tuple
}

// parseStaticArg reads an integer, a boolean, a dimension expression or a type.
// Bare names stay types until normalisation resolves the parameter kind.
func (p *parser) parseStaticArg() types.StaticArg {
	tok := p.peek()
	switch {
	case tok.kind == tokInt:
		return p.parseIntArg()
	case tok.kind == tokName && (tok.text() == "true" || tok.text() == "false"):
		p.advance()
		return types.BoolArg{Value: tok.text() == "true"}
	case tok.kind == tokName && (p.peekAt(1).text() == "*" || p.peekAt(1).text() == "/"):
		return types.DimArg{Expr: p.parseDimExpr()}
	}
	if tok.kind == tokName {
		if kind, ok := p.lookupParam(tok.text()); ok && kind != types.KindType {
			p.advance()
			return paramRef(tok.text(), kind)
		}
	}
	return types.TypeArg{Type: p.parseType()}
}

func paramRef(name string, kind types.StaticKind) types.StaticArg {
	switch kind {
	case types.KindInt, types.KindNat:
		return types.IntArg{Name: name}
	case types.KindBool:
		return types.BoolArg{Name: name}
	case types.KindDim:
		return types.DimArg{Expr: types.DimRef{Name: name}}
	case types.KindUnit:
		return types.UnitArg{Expr: types.DimRef{Name: name}}
	case types.KindOp:
		return types.OpArg{Name: name}
	}
	return types.TypeArg{Type: types.VarType{Name: name}}
}

func (p *parser) parseDimExpr() types.DimExpr {
	var expr types.DimExpr = types.DimRef{Name: p.expectName()}
	for p.at("*") || p.at("/") {
		op := p.advance().text()
		expr = types.DimOp{Op: op, Left: expr, Right: types.DimRef{Name: p.expectName()}}
	}
	return expr
}
