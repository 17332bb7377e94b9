// Package domain holds the stylesheet scoper and the workflow that applies it
// to files on disk.
package domain

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"scopecss.dev/pkg/scopecss/internal/adapter"
	"scopecss.dev/pkg/scopecss/internal/controller"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

// scopedFileMode is the permission used for written targets.
const scopedFileMode = 0o644

var (
	// ErrInvalidScopeClass is returned for an empty or multi-line scope class.
	ErrInvalidScopeClass = errors.New("scope class must be a non-empty single-line token")
	// ErrStale is returned by Check when a scoped target is missing or outdated.
	ErrStale = errors.New("scoped stylesheets are out of date")
)

// ScopeArgs contains the arguments for scoping stylesheets.
type ScopeArgs struct {
	ResolveArgs
	ScopeClass string
	Threads    int
	DryRun     bool
	ShowDiff   bool
	Report     m.Path
}

// CheckArgs contains the arguments for verifying scoped targets.
type CheckArgs struct {
	ResolveArgs
	ScopeClass string
	Threads    int
	ShowDiff   bool
}

// ViewArgs selects a saved report and, optionally, the statuses to show.
type ViewArgs struct {
	Report   m.Path
	Statuses []m.Status
}

// Workflow defines the operations exposed to the CLI.
type Workflow interface {
	Scope(ctx context.Context, args ScopeArgs) error
	Check(ctx context.Context, args CheckArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Resolver
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	resolver Resolver,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Resolver:        resolver,
	}
}

// Scope reads every resolved stylesheet, scopes it and writes the target
// file unless args.DryRun is set. Failures of individual files are reported
// together once all files have been processed.
func (w *workflow) Scope(ctx context.Context, args ScopeArgs) error {
	sheets, err := w.prepare(ctx, args.ScopeClass, args.ResolveArgs)
	if err != nil {
		return err
	}

	defer w.Close(ctx)

	results, err := w.processStylesheets(ctx, sheets, args.Threads, func(sheet m.Stylesheet) m.Result {
		return w.scopeStylesheet(sheet, args)
	})
	if err != nil {
		slog.Error("Scoping interrupted", "error", err)
		return err
	}

	if err := w.present(ctx, results, args.ShowDiff); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if args.Report != "" {
		if err := w.SaveReport(args.Report, results); err != nil {
			slog.Error("Failed to save report", "path", args.Report, "error", err)
			return fmt.Errorf("save report: %w", err)
		}
	}

	return collectFailures(results)
}

// Check recomputes every target in memory and compares it with the file on
// disk without writing anything.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	sheets, err := w.prepare(ctx, args.ScopeClass, args.ResolveArgs)
	if err != nil {
		return err
	}

	defer w.Close(ctx)

	results, err := w.processStylesheets(ctx, sheets, args.Threads, func(sheet m.Stylesheet) m.Result {
		return w.checkStylesheet(sheet, args)
	})
	if err != nil {
		slog.Error("Check interrupted", "error", err)
		return err
	}

	if err := w.present(ctx, results, args.ShowDiff); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	stale := 0

	for _, result := range results {
		if result.Status == m.Stale {
			stale++
		}
	}

	var staleErr error
	if stale > 0 {
		staleErr = fmt.Errorf("%w: %d of %d", ErrStale, stale, len(results))
	}

	return errors.Join(staleErr, collectFailures(results))
}

// View displays a report written by an earlier Scope run. When statuses are
// given only matching stylesheets are listed.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	results, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "path", args.Report, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	results = filterByStatus(results, args.Statuses)

	if err := w.Start(ctx); err != nil {
		return err
	}

	defer w.Close(ctx)

	slog.Debug("Viewing report", "path", args.Report, "stylesheets", len(results))

	return w.present(ctx, results, false)
}

func filterByStatus(results []m.Result, statuses []m.Status) []m.Result {
	if len(statuses) == 0 {
		return results
	}

	filtered := make([]m.Result, 0, len(results))

	for _, result := range results {
		if slices.Contains(statuses, result.Status) {
			filtered = append(filtered, result)
		}
	}

	return filtered
}

func (w *workflow) prepare(ctx context.Context, scopeClass string, args ResolveArgs) ([]m.Stylesheet, error) {
	if err := validateScopeClass(scopeClass); err != nil {
		return nil, err
	}

	sheets, err := w.Resolve(ctx, args)
	if err != nil {
		slog.Error("Failed to resolve stylesheets", "error", err)
		return nil, fmt.Errorf("resolve stylesheets: %w", err)
	}

	if err := w.Start(ctx); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return nil, err
	}

	return sheets, nil
}

// processStylesheets runs process for every stylesheet on at most threads
// goroutines. Results keep the order of sheets.
func (w *workflow) processStylesheets(
	ctx context.Context,
	sheets []m.Stylesheet,
	threads int,
	process func(m.Stylesheet) m.Result,
) ([]m.Result, error) {
	results := make([]m.Result, len(sheets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(threads, 1))

	for i, sheet := range sheets {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			results[i] = process(sheet)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (w *workflow) scopeStylesheet(sheet m.Stylesheet, args ScopeArgs) m.Result {
	result := m.Result{Stylesheet: sheet}

	source, err := w.ReadFile(sheet.Source)
	if err != nil {
		return failed(result, fmt.Errorf("read stylesheet: %w", err))
	}

	scoped, rewritten := ScopeAndCount(string(source), args.ScopeClass)

	result.InputBytes = len(source)
	result.OutputBytes = len(scoped)
	result.RewrittenLines = rewritten
	result.InputHash = hashBytes(source)
	result.OutputHash = hashBytes([]byte(scoped))

	result.Status = m.Unchanged
	if rewritten > 0 {
		result.Status = m.Scoped
	}

	if args.ShowDiff {
		result.Diff = w.diff(sheet.Source, sheet.Target, string(source), scoped)
	}

	if !args.DryRun {
		if err := w.WriteFile(sheet.Target, []byte(scoped), scopedFileMode); err != nil {
			return failed(result, fmt.Errorf("write stylesheet: %w", err))
		}

		result.Written = true
	}

	slog.Info("Scoped stylesheet",
		"source", sheet.Source,
		"target", sheet.Target,
		"input_bytes", result.InputBytes,
		"output_bytes", result.OutputBytes,
		"rewritten_lines", rewritten,
		"written", result.Written,
	)

	return result
}

func (w *workflow) checkStylesheet(sheet m.Stylesheet, args CheckArgs) m.Result {
	result := m.Result{Stylesheet: sheet}

	source, err := w.ReadFile(sheet.Source)
	if err != nil {
		return failed(result, fmt.Errorf("read stylesheet: %w", err))
	}

	scoped, rewritten := ScopeAndCount(string(source), args.ScopeClass)

	result.InputBytes = len(source)
	result.OutputBytes = len(scoped)
	result.RewrittenLines = rewritten
	result.InputHash = hashBytes(source)
	result.OutputHash = hashBytes([]byte(scoped))

	targetHash, err := w.HashFile(sheet.Target)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = m.Stale
	case err != nil:
		return failed(result, fmt.Errorf("hash target: %w", err))
	case targetHash == result.OutputHash:
		result.Status = m.UpToDate
	default:
		result.Status = m.Stale
	}

	if result.Status == m.Stale && args.ShowDiff {
		// A missing target diffs against empty text.
		current, _ := w.ReadFile(sheet.Target)
		result.Diff = w.diff(sheet.Target, sheet.Target+" (expected)", string(current), scoped)
	}

	slog.Debug("Checked stylesheet", "source", sheet.Source, "target", sheet.Target, "status", result.Status)

	return result
}

func (w *workflow) diff(from, to m.Path, original, scoped string) string {
	diff, err := UnifiedDiff(string(from), string(to), original, scoped)
	if err != nil {
		slog.Warn("Failed to build diff", "source", from, "error", err)
		return ""
	}

	return diff
}

func (w *workflow) present(ctx context.Context, results []m.Result, showDiff bool) error {
	for _, result := range results {
		w.DisplayResult(ctx, result)

		if showDiff {
			if err := w.DisplayDiff(ctx, result); err != nil {
				return err
			}
		}
	}

	return w.DisplaySummary(ctx, results)
}

func failed(result m.Result, err error) m.Result {
	slog.Error("Failed to process stylesheet", "source", result.Stylesheet.Source, "error", err)

	result.Status = m.Failed
	result.Err = err

	return result
}

func collectFailures(results []m.Result) error {
	var errs []error

	for _, result := range results {
		if result.Status == m.Failed && result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Stylesheet.Source, result.Err))
		}
	}

	return errors.Join(errs...)
}

func validateScopeClass(scopeClass string) error {
	if strings.TrimSpace(scopeClass) == "" || strings.ContainsAny(scopeClass, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidScopeClass, scopeClass)
	}

	return nil
}

func hashBytes(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
