//go:build js && wasm

// Package debug writes trace output to the browser console under wasm and
// to slog elsewhere.
package debug

import (
	"fmt"
	"strings"
	"syscall/js"
)

// Log prints msg followed by key=value pairs to the console.
func Log(msg string, args ...any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	js.Global().Get("console").Call("log", b.String())
}
