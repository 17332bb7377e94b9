package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

const reportVersion = 1

// ReportStore persists the outcome of a scoping run.
type ReportStore interface {
	SaveReport(path m.Path, results []m.Result) error
	LoadReport(path m.Path) ([]m.Result, error)
}

type reportFile struct {
	Version     int           `yaml:"version"`
	Stylesheets []reportEntry `yaml:"stylesheets"`
}

type reportEntry struct {
	Source         string `yaml:"source"`
	Target         string `yaml:"target"`
	Status         string `yaml:"status"`
	InputBytes     int    `yaml:"input_bytes"`
	OutputBytes    int    `yaml:"output_bytes"`
	RewrittenLines int    `yaml:"rewritten_lines"`
	Written        bool   `yaml:"written"`
	InputHash      string `yaml:"input_sha256,omitempty"`
	OutputHash     string `yaml:"output_sha256,omitempty"`
	Error          string `yaml:"error,omitempty"`
}

// YAMLReportStore writes reports as YAML documents.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes results to path, creating parent directories as needed.
func (s *YAMLReportStore) SaveReport(path m.Path, results []m.Result) error {
	report := reportFile{
		Version:     reportVersion,
		Stylesheets: make([]reportEntry, 0, len(results)),
	}

	for _, result := range results {
		entry := reportEntry{
			Source:         string(result.Stylesheet.Source),
			Target:         string(result.Stylesheet.Target),
			Status:         result.Status.String(),
			InputBytes:     result.InputBytes,
			OutputBytes:    result.OutputBytes,
			RewrittenLines: result.RewrittenLines,
			Written:        result.Written,
			InputHash:      result.InputHash,
			OutputHash:     result.OutputHash,
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}

		report.Stylesheets = append(report.Stylesheets, entry)
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.Debug("saved report", "path", path, "stylesheets", len(results))

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (s *YAMLReportStore) LoadReport(path m.Path) ([]m.Result, error) {
	// #nosec G304 - report path is configured by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report reportFile
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	if report.Version != reportVersion {
		return nil, fmt.Errorf("unsupported report version %d", report.Version)
	}

	results := make([]m.Result, 0, len(report.Stylesheets))

	for _, entry := range report.Stylesheets {
		status, ok := m.ParseStatus(entry.Status)
		if !ok {
			slog.Warn("unknown status in report", "path", path, "status", entry.Status)
		}

		result := m.Result{
			Stylesheet: m.Stylesheet{
				Source: m.Path(entry.Source),
				Target: m.Path(entry.Target),
			},
			Status:         status,
			InputBytes:     entry.InputBytes,
			OutputBytes:    entry.OutputBytes,
			RewrittenLines: entry.RewrittenLines,
			Written:        entry.Written,
			InputHash:      entry.InputHash,
			OutputHash:     entry.OutputHash,
		}
		if entry.Error != "" {
			result.Err = errors.New(entry.Error)
		}

		results = append(results, result)
	}

	return results, nil
}
