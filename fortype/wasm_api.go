//go:build js && wasm

package fortype

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/stokito/fortress-lang-sub003/frontend/ilerr"
	"github.com/stokito/fortress-lang-sub003/frontend/types"
)

func showErrors(header string, errs *ilerr.Errors) string {
	sb := strings.Builder{}
	sb.WriteString(header)
	sb.WriteByte('\n')
	for _, ileError := range errs.Errors() {
		sb.WriteString(ilerr.FormatWithCode(ileError))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CheckSubtype takes declarations, a subtype and a supertype and returns
// the resulting constraint formula, or the errors found
func CheckSubtype(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "analyzer panicked: " + fmt.Sprint(r)
		}
	}()
	if len(args) != 3 {
		return fmt.Sprintf("expected 3 arguments, got %d", len(args))
	}
	session, errs := NewSession(args[0].String(), types.DefaultOptions())
	if errs.HasError() {
		return showErrors("the declarations have the following errors:", errs)
	}
	f, err := session.Check(args[1].String(), args[2].String())
	if err != nil {
		return fmt.Sprintf("the query failed:\n%s", err)
	}
	return f.String()
}

// SolveConstraints takes declarations and newline-separated constraints and
// returns the solved inference variables.
//
// output: { error: string } | { solution: string }
func SolveConstraints(_ js.Value, args []js.Value) (ret any) {
	errorObj := func(err string) any {
		return js.ValueOf(map[string]any{"error": err})
	}
	defer func() {
		if r := recover(); r != nil {
			ret = errorObj("analyzer panicked: " + fmt.Sprint(r))
		}
	}()
	if len(args) != 2 {
		return errorObj(fmt.Sprintf("expected 2 arguments, got %d", len(args)))
	}
	session, errs := NewSession(args[0].String(), types.DefaultOptions())
	if errs.HasError() {
		return errorObj(showErrors("the declarations have the following errors:", errs))
	}
	var constraints []string
	for _, line := range strings.Split(args[1].String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			constraints = append(constraints, line)
		}
	}
	f, err := session.Solve(constraints...)
	if err != nil {
		return errorObj(fmt.Sprintf("the query failed:\n%s", err))
	}
	return js.ValueOf(map[string]any{"solution": f.String()})
}
