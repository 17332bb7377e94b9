// Package controller provides output adapters for displaying scoping results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

// UI defines how the workflow reports progress and results to the operator.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	DisplayResult(ctx context.Context, result m.Result)
	DisplayDiff(ctx context.Context, result m.Result) error
	DisplaySummary(ctx context.Context, results []m.Result) error
}

// NewUI returns a TUI when stdout is a terminal and a SimpleUI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd, false)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
