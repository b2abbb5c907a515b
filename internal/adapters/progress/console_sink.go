package progress

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/trebuchet-org/daovote/internal/domain/config"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// ConsoleSink prints progress lines to stderr so stdout stays machine readable
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a sink writing to w
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

// NewProgressSink picks the sink for the current run. JSON output is silent.
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON {
		return NewNopSink()
	}
	return NewConsoleSink(os.Stderr)
}

// OnProgress prints one line per stage event
func (s *ConsoleSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	stage := color.New(color.Faint).Sprintf("[%s]", event.Stage)
	fmt.Fprintf(s.out, "%s %s\n", stage, event.Message)
}

// Info prints an info message
func (s *ConsoleSink) Info(message string) {
	color.New(color.FgCyan).Fprintln(s.out, message)
}

// Error prints an error message
func (s *ConsoleSink) Error(message string) {
	color.New(color.FgRed).Fprintln(s.out, message)
}

var _ usecase.ProgressSink = (*ConsoleSink)(nil)
