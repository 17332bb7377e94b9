package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// SimpleUI implements UI using the cobra command's output writer.
type SimpleUI struct {
	cmd   *cobra.Command
	color bool
}

// NewSimpleUI creates a new SimpleUI. When color is true, status labels are
// styled with ANSI colors.
func NewSimpleUI(cmd *cobra.Command, color bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, color: color}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// DisplayResult prints one line per stylesheet followed by its byte sizes.
func (s *SimpleUI) DisplayResult(ctx context.Context, result m.Result) {
	if err := ctx.Err(); err != nil {
		return
	}

	sheet := result.Stylesheet

	switch result.Status {
	case m.Failed:
		s.printf("%s %s: %v\n", s.label(result.Status), sheet.Source, result.Err)
		return
	case m.UpToDate, m.Stale:
		s.printf("%s %s -> %s\n", s.label(result.Status), sheet.Source, sheet.Target)
		return
	case m.Scoped, m.Unchanged:
	}

	verb := "Created"
	if !result.Written {
		verb = "Would create"
	}

	s.printf("%s %s scoped CSS file: %s\n", s.label(result.Status), verb, sheet.Target)
	s.printf("  Original size: %d bytes\n", result.InputBytes)
	s.printf("  Scoped size: %d bytes\n", result.OutputBytes)
}

// DisplayDiff prints the unified diff attached to result, if any.
func (s *SimpleUI) DisplayDiff(ctx context.Context, result m.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if result.Diff == "" {
		return nil
	}

	s.printf("%s", s.colorizeDiff(result.Diff))

	if !strings.HasSuffix(result.Diff, "\n") {
		s.printf("\n")
	}

	return nil
}

// DisplaySummary renders a table with one row per stylesheet and totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, results []m.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(results))

	return nil
}

func renderSummaryTable(results []m.Result) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Stylesheet", "Status", "Input", "Output", "Rewritten"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	var totalIn, totalOut, totalLines int

	for _, result := range results {
		table.Append([]string{
			string(result.Stylesheet.Source),
			result.Status.String(),
			fmt.Sprintf("%d", result.InputBytes),
			fmt.Sprintf("%d", result.OutputBytes),
			fmt.Sprintf("%d", result.RewrittenLines),
		})

		totalIn += result.InputBytes
		totalOut += result.OutputBytes
		totalLines += result.RewrittenLines
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(results)),
		"",
		fmt.Sprintf("%d", totalIn),
		fmt.Sprintf("%d", totalOut),
		fmt.Sprintf("%d", totalLines),
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) label(status m.Status) string {
	var text string

	style := okStyle

	switch status {
	case m.Scoped, m.UpToDate:
		text = "✓"
	case m.Unchanged:
		text = "="
		style = faintStyle
	case m.Stale:
		text = "!"
		style = warnStyle
	case m.Failed:
		text = "✗"
		style = failStyle
	default:
		text = "?"
	}

	if !s.color {
		return text
	}

	return style.Render(text)
}

func (s *SimpleUI) colorizeDiff(diff string) string {
	if !s.color {
		return diff
	}

	return colorizeDiffLines(diff)
}

// colorizeDiffLines styles added and removed lines of a unified diff.
func colorizeDiffLines(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			lines[i] = faintStyle.Render(body) + line[len(body):]
		case strings.HasPrefix(body, "+"):
			lines[i] = okStyle.Render(body) + line[len(body):]
		case strings.HasPrefix(body, "-"):
			lines[i] = failStyle.Render(body) + line[len(body):]
		}
	}

	return strings.Join(lines, "")
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
