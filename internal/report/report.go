// Package report shapes resolved groups into the reporting forms: the JSON
// view served by the API and the CSV export with the original tool's
// column layout.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

// CSV header, matching the columns of the original results export.
var csvHeader = []string{
	"URLs Semelhantes",
	"Termos Compartilhados",
	"# Termos Compartilhados",
	"URL a Manter",
	"Cliques",
}

// Member is one non-representative page of a group with its evidence
// against the group's source page.
type Member struct {
	URL         string   `json:"url"`
	Shared      []string `json:"shared_terms,omitempty"`
	SharedCount int      `json:"shared_count"`
}

// Group is the projected reporting shape of one resolved group.
type Group struct {
	Representative string   `json:"representative"`
	Clicks         uint64   `json:"clicks"`
	Members        []Member `json:"members"`
	// SharedTerms is the intersection of every group page's keyword set,
	// the group-wide evidence the CSV export carries.
	SharedTerms []string `json:"shared_terms"`
	SharedCount int      `json:"shared_count"`
}

// URLs returns every page of the group, representative included, sorted.
func (g Group) URLs() []string {
	out := make([]string, 0, len(g.Members)+1)
	out = append(out, g.Representative)
	for _, m := range g.Members {
		out = append(out, m.URL)
	}
	sort.Strings(out)
	return out
}

// Project shapes resolved groups for reporting. byID must cover every page
// appearing in the groups.
func Project(groups []models.Group, byID map[string]*models.PageProfile) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		members := make([]Member, 0, len(g.Members))
		for _, id := range g.Members {
			m := Member{URL: id}
			if ev, ok := g.Evidence[id]; ok {
				m.Shared = ev.Shared
				m.SharedCount = ev.SharedCount
			}
			members = append(members, m)
		}

		all := append([]string{g.Representative}, g.Members...)
		shared := intersection(all, byID)

		out = append(out, Group{
			Representative: g.Representative,
			Clicks:         g.Clicks,
			Members:        members,
			SharedTerms:    shared,
			SharedCount:    len(shared),
		})
	}
	return out
}

// intersection computes the sorted set of keywords present in every listed
// page's profile.
func intersection(ids []string, byID map[string]*models.PageProfile) []string {
	if len(ids) == 0 {
		return nil
	}
	first, ok := byID[ids[0]]
	if !ok {
		return nil
	}

	var shared []string
	for kw := range first.Keywords {
		inAll := true
		for _, id := range ids[1:] {
			p, ok := byID[id]
			if !ok || !p.HasKeyword(kw) {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, kw)
		}
	}
	sort.Strings(shared)
	return shared
}

// WriteCSV writes the projected groups as the results export.
func WriteCSV(w io.Writer, groups []Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, g := range groups {
		record := []string{
			strings.Join(g.URLs(), ", "),
			strings.Join(g.SharedTerms, ", "),
			strconv.Itoa(g.SharedCount),
			g.Representative,
			strconv.FormatUint(g.Clicks, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write group: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
