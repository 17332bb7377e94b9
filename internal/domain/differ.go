package domain

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// diffContextLines is the number of unchanged lines shown around each change.
const diffContextLines = 3

// UnifiedDiff returns a unified diff from original to scoped, labelled with
// the given file names. It returns an empty string when both texts are equal.
func UnifiedDiff(fromFile, toFile, original, scoped string) (string, error) {
	if original == scoped {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(scoped),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  diffContextLines,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", fromFile, err)
	}

	return text, nil
}
