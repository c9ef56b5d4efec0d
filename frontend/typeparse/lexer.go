package typeparse

import (
	"unicode"

	"github.com/antlr4-go/antlr/v4"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokInt
	tokPunct
)

// token pairs the kind the parser switches on with the antlr token holding
// its text and position
type token struct {
	antlr.Token
	kind tokenKind
}

func (t token) text() string {
	return t.GetText()
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "'" + t.GetText() + "'"
}

// punctuation is ordered so that longer symbols are matched first
var punctuation = []string{
	`[\`, `\]`, "...", "->", "<:",
	"[", "]", "(", ")", "{", "}", ",", "|", "&", "=", ":", "#", "^", "$", "*", "/", ".", ";",
}

// lexer splits declaration text into tokens, reading runes from an antlr character stream
type lexer struct {
	input   *antlr.InputStream
	factory antlr.TokenFactory
	source  *antlr.TokenSourceCharStreamPair
	line    int
	column  int

	startLine, startColumn int
}

func tokenize(src string) ([]token, *token) {
	l := lexer{
		input:   antlr.NewInputStream(src),
		factory: antlr.CommonTokenFactoryDEFAULT,
		source:  &antlr.TokenSourceCharStreamPair{},
		line:    1,
	}
	var tokens []token
	for {
		tok, ok := l.next()
		if !ok {
			return tokens, &tok
		}
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(i int) rune {
	return rune(l.input.LA(i))
}

func (l *lexer) atEOF() bool {
	return l.input.LA(1) == antlr.TokenEOF
}

func (l *lexer) consume() {
	if l.peek(1) == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.input.Consume()
}

func (l *lexer) skipBlank() {
	for !l.atEOF() {
		switch {
		case unicode.IsSpace(l.peek(1)):
			l.consume()
		case l.peek(1) == '/' && l.peek(2) == '/':
			for !l.atEOF() && l.peek(1) != '\n' {
				l.consume()
			}
		default:
			return
		}
	}
}

// next returns the next token, or false and the offending character
func (l *lexer) next() (token, bool) {
	l.skipBlank()
	start := l.input.Index()
	l.startLine, l.startColumn = l.line, l.column
	if l.atEOF() {
		return l.token(tokEOF, start), true
	}
	c := l.peek(1)
	switch {
	case isNameStart(c):
		for !l.atEOF() && isNamePart(l.peek(1)) {
			l.consume()
		}
		return l.token(tokName, start), true
	case unicode.IsDigit(c) || c == '-' && unicode.IsDigit(l.peek(2)):
		l.consume()
		for !l.atEOF() && unicode.IsDigit(l.peek(1)) {
			l.consume()
		}
		return l.token(tokInt, start), true
	}
	for _, p := range punctuation {
		if l.lookingAt(p) {
			for range []rune(p) {
				l.consume()
			}
			return l.token(tokPunct, start), true
		}
	}
	l.consume()
	return l.token(tokPunct, start), false
}

func (l *lexer) lookingAt(s string) bool {
	for i, r := range []rune(s) {
		if l.peek(i+1) != r {
			return false
		}
	}
	return true
}

func (l *lexer) token(kind tokenKind, start int) token {
	stop := l.input.Index() - 1
	text := ""
	ttype := antlr.TokenEOF
	if kind != tokEOF {
		text = l.input.GetText(start, stop)
		ttype = int(kind)
	}
	tok := l.factory.Create(l.source, ttype, text, antlr.TokenDefaultChannel, start, stop, l.startLine, l.startColumn)
	return token{Token: tok, kind: kind}
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r)
}
