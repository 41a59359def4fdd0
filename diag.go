package logsim

import (
	"fmt"
	"strings"
)

// A Class groups diagnostics by the stage that detected them.
type Class uint8

// Diagnostic classes.
const (
	Lexical Class = iota
	Syntax
	Semantic
)

func (c Class) String() string {
	switch c {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	default:
		return "semantic error"
	}
}

// A Diagnostic is one problem found in a netlist, anchored to a source
// position. Parsing collects every diagnostic it can instead of stopping
// at the first.
type Diagnostic struct {
	Class Class
	Line  int
	Col   int
	Msg   string
	Src   string // text of the offending source line
}

// String renders the diagnostic with its source line and a caret under
// the offending column.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: %s: %s", d.Line, d.Col, d.Class, d.Msg)
	if d.Src != "" {
		b.WriteString("\n    ")
		b.WriteString(d.Src)
		b.WriteString("\n    ")
		for i := 0; i < d.Col-1 && i < len(d.Src); i++ {
			if d.Src[i] == '\t' {
				b.WriteByte('\t')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('^')
	}
	return b.String()
}
