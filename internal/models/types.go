// Package models defines the data structures shared across the
// cannibalization analysis pipeline.
package models

// Row is one normalized observation from a Search Console export:
// a landing page ranking for a query with a click count.
type Row struct {
	Page    string
	Keyword string
	Clicks  uint64
}

// PageProfile aggregates all observations for a single landing page.
// Immutable once built for the duration of a run.
type PageProfile struct {
	ID       string
	Keywords map[string]struct{}
	Clicks   uint64
}

// HasKeyword reports whether the profile contains the given keyword.
func (p *PageProfile) HasKeyword(kw string) bool {
	_, ok := p.Keywords[kw]
	return ok
}

// CandidateMatch records the keyword overlap between a source page and one
// candidate. The relation is directional: the qualifying ratio is always
// computed against the source page's keyword-set size, so Match(A,B) and
// Match(B,A) can disagree even though SharedCount is symmetric.
type CandidateMatch struct {
	From        string
	To          string
	Shared      []string
	SharedCount int
}

// Group is one disjoint cluster of pages judged to target the same search
// intent. Members excludes the representative. Evidence maps each candidate
// found during the source page's search to its match; the source itself
// carries no evidence entry.
type Group struct {
	// Source is the page whose candidate search formed the group.
	Source string
	// Representative is the member with the highest click total, kept as
	// the canonical target.
	Representative string
	// Clicks is the representative's click total.
	Clicks  uint64
	Members []string
	// Evidence is keyed by candidate page ID.
	Evidence map[string]CandidateMatch
}
