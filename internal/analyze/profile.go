// Package analyze implements the core of the cannibalization detector:
// per-page keyword profiles, the keyword inverted index, the directional
// similarity matcher, and the greedy cluster resolver.
package analyze

import (
	"sort"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

// BuildProfiles aggregates normalized rows into one profile per distinct
// page: the union of its observed keywords and the sum of clicks over every
// row, duplicate keyword observations included. The returned slice is sorted
// by page ID ascending; that ordering is the fixed iteration order used by
// the resolver and must not change between runs.
func BuildProfiles(rows []models.Row) []*models.PageProfile {
	byID := make(map[string]*models.PageProfile)
	for _, row := range rows {
		p, ok := byID[row.Page]
		if !ok {
			p = &models.PageProfile{
				ID:       row.Page,
				Keywords: make(map[string]struct{}),
			}
			byID[row.Page] = p
		}
		p.Keywords[row.Keyword] = struct{}{}
		p.Clicks += row.Clicks
	}

	profiles := make([]*models.PageProfile, 0, len(byID))
	for _, p := range byID {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ID < profiles[j].ID
	})
	return profiles
}

// ProfileMap indexes profiles by page ID.
func ProfileMap(profiles []*models.PageProfile) map[string]*models.PageProfile {
	byID := make(map[string]*models.PageProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID
}
