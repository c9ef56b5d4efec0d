package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	UnknownType
	StaticArgKind
	StaticArgCount
	ArrayShape
	MatrixShape
	NotYetImplemented
	NotNormalized
	Parse
	DuplicateDeclaration
)

type IleError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = strings.TrimSpace(lines[6])
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

// IsMalformedInput reports whether err was caused by a malformed type or declaration,
// as opposed to a construct the analyzer does not support.
func IsMalformedInput(err IleError) bool {
	switch err.Code() {
	case UnknownType, StaticArgKind, StaticArgCount, ArrayShape, MatrixShape, Parse, DuplicateDeclaration:
		return true
	default:
		return false
	}
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnknownType struct {
	Name  string
	stack []byte
}

func (e NewUnknownType) Error() string {
	return fmt.Sprintf("type '%s' is not defined", e.Name)
}
func (e NewUnknownType) Code() ErrCode    { return UnknownType }
func (e NewUnknownType) getStack() []byte { return e.stack }
func (e NewUnknownType) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewStaticArgKind struct {
	Cons  string
	Param string
	Want  string
	Got   string
	stack []byte
}

func (e NewStaticArgKind) Error() string {
	return fmt.Sprintf("static argument for parameter '%s' of '%s' must be of kind %s, but found %s", e.Param, e.Cons, e.Want, e.Got)
}
func (e NewStaticArgKind) Code() ErrCode    { return StaticArgKind }
func (e NewStaticArgKind) getStack() []byte { return e.stack }
func (e NewStaticArgKind) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewStaticArgCount struct {
	Cons  string
	Want  int
	Got   int
	stack []byte
}

func (e NewStaticArgCount) Error() string {
	return fmt.Sprintf("'%s' expects %d static arguments, but %d were given", e.Cons, e.Want, e.Got)
}
func (e NewStaticArgCount) Code() ErrCode    { return StaticArgCount }
func (e NewStaticArgCount) getStack() []byte { return e.stack }
func (e NewStaticArgCount) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArrayShape struct {
	Type   string
	Reason string
	stack  []byte
}

func (e NewArrayShape) Error() string {
	return fmt.Sprintf("cannot desugar array type '%s': %s", e.Type, e.Reason)
}
func (e NewArrayShape) Code() ErrCode    { return ArrayShape }
func (e NewArrayShape) getStack() []byte { return e.stack }
func (e NewArrayShape) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewMatrixShape struct {
	Type   string
	Reason string
	stack  []byte
}

func (e NewMatrixShape) Error() string {
	return fmt.Sprintf("cannot desugar matrix type '%s': %s", e.Type, e.Reason)
}
func (e NewMatrixShape) Code() ErrCode    { return MatrixShape }
func (e NewMatrixShape) getStack() []byte { return e.stack }
func (e NewMatrixShape) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotYetImplemented struct {
	What  string
	stack []byte
}

func (e NewNotYetImplemented) Error() string {
	return fmt.Sprintf("not yet implemented: %s", e.What)
}
func (e NewNotYetImplemented) Code() ErrCode    { return NotYetImplemented }
func (e NewNotYetImplemented) getStack() []byte { return e.stack }
func (e NewNotYetImplemented) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotNormalized struct {
	Type  string
	stack []byte
}

func (e NewNotNormalized) Error() string {
	return fmt.Sprintf("type '%s' must be normalized before it is compared", e.Type)
}
func (e NewNotNormalized) Code() ErrCode    { return NotNormalized }
func (e NewNotNormalized) getStack() []byte { return e.stack }
func (e NewNotNormalized) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewParse struct {
	Offset        int
	Line, Column  int
	ParserMessage string
	stack         []byte
}

func (e NewParse) Error() string {
	return fmt.Sprintf("at %d:%d: %s", e.Line, e.Column, e.ParserMessage)
}
func (e NewParse) Code() ErrCode    { return Parse }
func (e NewParse) getStack() []byte { return e.stack }
func (e NewParse) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewDuplicateDeclaration struct {
	Name  string
	stack []byte
}

func (e NewDuplicateDeclaration) Error() string {
	return fmt.Sprintf("type constructor '%s' is declared more than once", e.Name)
}
func (e NewDuplicateDeclaration) Code() ErrCode    { return DuplicateDeclaration }
func (e NewDuplicateDeclaration) getStack() []byte { return e.stack }
func (e NewDuplicateDeclaration) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
