package report

import (
	"fmt"
	"strings"

	"brandpulse/internal/types"
)

// validateReport cross-checks the assembled report against the input records.
// All checks run even when an earlier one fails, so a single pass through the
// logs shows every problem. Validation is an observability signal, not a
// gate: callers log the problems and return the report anyway.
func validateReport(r *Report, records []types.ClassifiedPost) []string {
	var problems []string

	// Counts are recomputed from the listings rather than trusted from the
	// summary struct, so a synthesis bug in either place shows up here.
	pos := len(r.RawData.AllPositive)
	neg := len(r.RawData.AllNegative)
	if pos+neg != r.RawData.Summary.Total {
		problems = append(problems, fmt.Sprintf(
			"count mismatch: positive (%d) + negative (%d) != total (%d)",
			pos, neg, r.RawData.Summary.Total))
	}

	// Every input post must appear in exactly one listing. A URL in both
	// listings, or missing from both, shrinks the union below the input size.
	seen := make(map[string]bool, pos+neg)
	duplicates := 0
	for _, ref := range r.RawData.AllPositive {
		if seen[ref.URL] {
			duplicates++
		}
		seen[ref.URL] = true
	}
	for _, ref := range r.RawData.AllNegative {
		if seen[ref.URL] {
			duplicates++
		}
		seen[ref.URL] = true
	}
	if duplicates > 0 {
		problems = append(problems, fmt.Sprintf("%d post URL(s) listed more than once", duplicates))
	}

	inputURLs := make(map[string]bool, len(records))
	for _, rec := range records {
		inputURLs[rec.Post.URL] = true
	}
	if len(seen) != len(inputURLs) {
		problems = append(problems, fmt.Sprintf(
			"URL coverage mismatch: %d in listings, %d in input", len(seen), len(inputURLs)))
	} else {
		for url := range inputURLs {
			if !seen[url] {
				problems = append(problems, fmt.Sprintf("input post missing from listings: %s", url))
			}
		}
	}

	// Cheap sanity check against malformed upstream data.
	for url := range seen {
		if !strings.Contains(url, "http") {
			problems = append(problems, fmt.Sprintf("malformed post URL: %q", url))
		}
	}

	return problems
}
