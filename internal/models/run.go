package models

// RunResult is the full outcome of processing one GPS trace, shaped for
// the API response. Which sections are populated depends on the matching
// mode.
type RunResult struct {
	RunID   string    `json:"runId"`
	Mode    MatchKind `json:"mode"`
	RunDate int64     `json:"runDate"`

	Streets         []LogicalStreet  `json:"streets,omitempty"`
	UnnamedBuckets  []UnnamedBucket  `json:"unnamedBuckets,omitempty"`
	MatchedSegments []MatchedSegment `json:"matchedSegments,omitempty"`
	ValidatedEdges  []ValidatedEdge  `json:"validatedEdges,omitempty"`
	RejectionCounts map[string]int   `json:"rejectionCounts,omitempty"`
	WayCompletions  []WayCompletion  `json:"wayCompletions,omitempty"`
	NodeHits        int              `json:"nodeHits,omitempty"`

	Progress []StreetProgress `json:"progress,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}
