package domain

import (
	"fmt"
	"strings"
)

const (
	// ProvenancePrefix starts every summary produced by an enrichment handler
	ProvenancePrefix = "Rule:"
	// SplitSentinel marks a parent row whose content was split into story rows
	SplitSentinel = "SPLIT_INTO_STORIES"
)

// Provenance returns the provenance line for the given handler label
func Provenance(label string) string {
	return ProvenancePrefix + " " + label
}

// IsEnriched reports whether a stored summary was already produced by a handler
func IsEnriched(summary string) bool {
	return strings.TrimSpace(summary) != "" && strings.Contains(summary, ProvenancePrefix)
}

// IsSplit reports whether a stored summary is the split sentinel
func IsSplit(summary string) bool {
	return strings.HasPrefix(summary, SplitSentinel)
}

// SplitSummary returns the sentinel summary stored on a split parent
func SplitSummary(stories int) string {
	noun := "stories"
	if stories == 1 {
		noun = "story"
	}
	return fmt.Sprintf("%s (split into %d %s)", SplitSentinel, stories, noun)
}

// StoryID returns deterministic id of the story row at zero-based position idx
func StoryID(parentID string, idx int) string {
	return fmt.Sprintf("%s_story_%d", parentID, idx)
}
