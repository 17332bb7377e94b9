package model

import "strings"

// Status represents the outcome of processing a single stylesheet.
type Status int

const (
	// Scoped indicates at least one selector line was rewritten.
	Scoped Status = iota
	// Unchanged indicates the stylesheet had nothing to rewrite.
	Unchanged
	// UpToDate indicates the scoped target on disk matches a fresh run.
	UpToDate
	// Stale indicates the scoped target on disk is missing or outdated.
	Stale
	// Failed indicates the stylesheet could not be read or written.
	Failed
)

var statusNames = map[Status]string{
	Scoped:    "scoped",
	Unchanged: "unchanged",
	UpToDate:  "up-to-date",
	Stale:     "stale",
	Failed:    "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "unknown"
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for status, candidate := range statusNames {
		if candidate == name {
			return status, true
		}
	}

	return Failed, false
}

// Result represents the outcome of scoping or checking one stylesheet.
type Result struct {
	Stylesheet     Stylesheet
	Status         Status
	InputBytes     int
	OutputBytes    int
	RewrittenLines int
	InputHash      string
	OutputHash     string
	Written        bool   // target file was written during this run
	Diff           string // unified diff of source vs scoped text, when requested
	Err            error
}
