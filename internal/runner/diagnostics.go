package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Gabrial-8467/falcon/internal/lexer"
	"github.com/Gabrial-8467/falcon/internal/parser"
)

// ReportDiagnostic writes a source-pointing error report to w: the
// message, then the offending line with a caret under the column, when
// err carries position information. The caret is colorized only when w is
// a real terminal, gated behind go-isatty.
func ReportDiagnostic(w io.Writer, path, source string, err error) {
	line, col, ok := errorPosition(err)
	label := path
	if label == "" {
		label = "<source>"
	}
	if !ok {
		fmt.Fprintf(w, "%s: %s\n", label, err)
		return
	}
	fmt.Fprintf(w, "%s:%d:%d: %s\n", label, line, col, err)

	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return
	}
	srcLine := lines[line-1]
	fmt.Fprintln(w, srcLine)

	caret := strings.Repeat(" ", max0(col-1)) + "^"
	if colorize(w) {
		fmt.Fprintf(w, "\x1b[31m%s\x1b[0m\n", caret)
	} else {
		fmt.Fprintln(w, caret)
	}
}

func errorPosition(err error) (line, col int, ok bool) {
	switch e := err.(type) {
	case *lexer.Error:
		return e.Line, e.Col, true
	case *parser.Error:
		return e.Line, e.Col, true
	default:
		return 0, 0, false
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func colorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
