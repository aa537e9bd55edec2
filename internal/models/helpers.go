package models

import "strings"

// NormalizePage canonicalizes a landing page URL: trims surrounding
// whitespace and strips trailing slashes so "/a" and "/a/" collapse to the
// same page. Returns "" for URLs containing a fragment, which the Search
// Console export produces for in-page anchors and which never represent a
// distinct landing page.
func NormalizePage(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.Contains(s, "#") {
		return ""
	}
	s = strings.TrimRight(s, "/")
	return s
}

// FoldKeyword case-folds a query term. No further linguistic normalization
// is applied.
func FoldKeyword(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
