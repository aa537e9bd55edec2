package analyze

import (
	"sort"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

// Resolve turns per-page qualifying-candidate lists into disjoint groups.
//
// The pass is strictly sequential and visits pages in the order of the
// profiles slice (ascending page ID when built by BuildProfiles). Each
// unclaimed page with at least one unclaimed qualifying candidate claims
// itself and those candidates; claimed pages are skipped as sources and
// excluded from later groups. First claim wins: pages similar only through
// a chain A~B~C end up in separate groups unless each direct pairwise test
// qualifies. That greedy, non-transitive policy is the defining clustering
// semantics, and for a fixed iteration order the output is deterministic.
//
// The representative is the group member with the highest click total; on
// equal clicks the first page in the fixed iteration order wins.
func Resolve(profiles []*models.PageProfile, matches map[string][]models.CandidateMatch) []models.Group {
	byID := ProfileMap(profiles)
	claimed := make(map[string]struct{})
	var groups []models.Group

	for _, src := range profiles {
		if _, ok := claimed[src.ID]; ok {
			continue
		}

		var members []string
		evidence := make(map[string]models.CandidateMatch)
		for _, cm := range matches[src.ID] {
			if _, ok := claimed[cm.To]; ok {
				continue
			}
			members = append(members, cm.To)
			evidence[cm.To] = cm
		}
		if len(members) == 0 {
			// No group; src stays unclaimed and can still be pulled into a
			// later page's group as a member.
			continue
		}

		members = append(members, src.ID)
		sort.Strings(members)

		rep := members[0]
		for _, id := range members[1:] {
			if byID[id].Clicks > byID[rep].Clicks {
				rep = id
			}
		}

		for _, id := range members {
			claimed[id] = struct{}{}
		}

		rest := make([]string, 0, len(members)-1)
		for _, id := range members {
			if id != rep {
				rest = append(rest, id)
			}
		}

		groups = append(groups, models.Group{
			Source:         src.ID,
			Representative: rep,
			Clicks:         byID[rep].Clicks,
			Members:        rest,
			Evidence:       evidence,
		})
	}

	return groups
}
