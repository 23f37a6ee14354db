package telemetry

import (
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

// NewConsoleLogger returns a standard logger prefixed for the given
// component name. When w is an interactive terminal, timestamps are
// dropped in favor of the terminal's own scrollback; redirected to a
// file or pipe, full date/time/microsecond flags are kept so log lines
// stay self-describing once they leave the terminal.
func NewConsoleLogger(w io.Writer, component string) *log.Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		flags = 0
	}
	return log.New(w, "["+component+"] ", flags)
}
