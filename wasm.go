//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/stokito/fortress-lang-sub003/fortype"
)

func main() {
	js.Global().Set("CheckSubtype", js.FuncOf(fortype.CheckSubtype))
	js.Global().Set("SolveConstraints", js.FuncOf(fortype.SolveConstraints))

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
