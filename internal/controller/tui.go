package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

// pagerChromeHeight is the number of terminal rows used by the pager header and footer.
const pagerChromeHeight = 2

var titleStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)

// TUI implements UI for interactive terminals: colored output and a
// scrollable pager for diffs taller than the screen.
type TUI struct {
	*SimpleUI
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd, true)}
}

// DisplayDiff shows the diff directly when it fits the terminal and opens a
// pager otherwise.
func (p *TUI) DisplayDiff(ctx context.Context, result m.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if result.Diff == "" {
		return nil
	}

	output := p.cmd.OutOrStdout()
	width, height := terminalSize(output)

	model := newDiffPagerModel(string(result.Stylesheet.Target), colorizeDiffLines(result.Diff), width, height)
	if !model.needsPagination() {
		return p.SimpleUI.DisplayDiff(ctx, result)
	}

	program := tea.NewProgram(model, tea.WithOutput(output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("diff pager: %w", err)
	}

	return nil
}

func terminalSize(output io.Writer) (int, int) {
	f, ok := output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

// diffPagerModel is the Bubble Tea model for scrolling through a diff.
type diffPagerModel struct {
	title     string
	lineCount int
	height    int
	viewport  viewport.Model
	quitting  bool
}

func newDiffPagerModel(title, content string, width, height int) diffPagerModel {
	vp := viewport.New(width, max(height-pagerChromeHeight, 1))
	vp.SetContent(content)

	return diffPagerModel{
		title:     title,
		lineCount: strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1,
		height:    height,
		viewport:  vp,
	}
}

// needsPagination reports whether the content is taller than the terminal.
// An unknown terminal height never paginates.
func (d diffPagerModel) needsPagination() bool {
	if d.height <= 0 {
		return false
	}

	return d.lineCount > d.height-pagerChromeHeight
}

func (d diffPagerModel) Init() tea.Cmd {
	return nil
}

func (d diffPagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.height = msg.Height
		d.viewport.Width = msg.Width
		d.viewport.Height = max(msg.Height-pagerChromeHeight, 1)

		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			d.quitting = true
			return d, tea.Quit
		}
	}

	var cmd tea.Cmd

	d.viewport, cmd = d.viewport.Update(msg)

	return d, cmd
}

func (d diffPagerModel) View() string {
	if d.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n")
	b.WriteString(d.viewport.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("q quit • ↑/↓ scroll • %3.0f%%", d.viewport.ScrollPercent()*100)))

	return b.String()
}
