package analyze

import "github.com/lucasvnasc/paginas-semelhantes/internal/models"

// InvertedIndex maps each keyword to the pages whose profile contains it.
// Read-only after construction. It bounds every similarity query to the
// pages sharing at least one keyword with the source, instead of scanning
// the full profile table.
type InvertedIndex struct {
	postings map[string][]string
}

// BuildIndex registers every (page, keyword) pair of every profile. Posting
// lists inherit the profile slice's ordering, so building from the sorted
// output of BuildProfiles yields sorted postings.
func BuildIndex(profiles []*models.PageProfile) *InvertedIndex {
	ix := &InvertedIndex{postings: make(map[string][]string)}
	for _, p := range profiles {
		for kw := range p.Keywords {
			ix.postings[kw] = append(ix.postings[kw], p.ID)
		}
	}
	return ix
}

// Candidates returns the union of posting lists for the given keyword set,
// minus the querying page itself. Pages sharing zero keywords with the set
// never appear, regardless of any threshold applied later.
func (ix *InvertedIndex) Candidates(keywords map[string]struct{}, exclude string) map[string]struct{} {
	out := make(map[string]struct{})
	for kw := range keywords {
		for _, id := range ix.postings[kw] {
			if id == exclude {
				continue
			}
			out[id] = struct{}{}
		}
	}
	return out
}

// Keywords returns the number of distinct keywords indexed.
func (ix *InvertedIndex) Keywords() int {
	return len(ix.postings)
}

// Postings returns the pages registered under a keyword.
func (ix *InvertedIndex) Postings(kw string) []string {
	return ix.postings[kw]
}
