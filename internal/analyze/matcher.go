package analyze

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

// DefaultThreshold is the shared-keyword ratio below which a candidate does
// not qualify, matching the original tool's 80% default.
const DefaultThreshold = 0.8

// DefaultMinKeywords is the minimum keyword-set size a page needs before it
// is evaluated as a comparison source. Smaller pages can still be pulled
// into a group as candidates of a larger page.
const DefaultMinKeywords = 10

// Config holds the externally settable matcher parameters.
type Config struct {
	// Threshold is the qualifying ratio t in [0,1]. A candidate B qualifies
	// for source A iff |K_A ∩ K_B| / |K_A| >= t. The denominator is always
	// the source page's keyword-set size; the relation is intentionally
	// asymmetric and must not be symmetrized.
	Threshold float64
	// MinKeywords is the minimum keyword-set size for comparison sources.
	MinKeywords int
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MinKeywords: DefaultMinKeywords}
}

// Validate rejects numeric invariant violations before matching starts.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return errors.New("threshold must be finite")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0,1]", c.Threshold)
	}
	if c.MinKeywords < 1 {
		return fmt.Errorf("min keywords %d must be at least 1", c.MinKeywords)
	}
	return nil
}

// Matcher scores keyword overlap between a source page and the candidates
// the inverted index yields for it. All state is immutable after NewMatcher,
// so Matches may be called from concurrent goroutines.
type Matcher struct {
	cfg      Config
	index    *InvertedIndex
	profiles []*models.PageProfile
	byID     map[string]*models.PageProfile
}

// NewMatcher validates the config and prepares a matcher over the given
// profile set and index.
func NewMatcher(profiles []*models.PageProfile, index *InvertedIndex, cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matcher config: %w", err)
	}
	return &Matcher{
		cfg:      cfg,
		index:    index,
		profiles: profiles,
		byID:     ProfileMap(profiles),
	}, nil
}

// Sources returns the pages eligible as comparison sources, in the fixed
// iteration order.
func (m *Matcher) Sources() []*models.PageProfile {
	var out []*models.PageProfile
	for _, p := range m.profiles {
		if len(p.Keywords) >= m.cfg.MinKeywords {
			out = append(out, p)
		}
	}
	return out
}

// Matches computes the qualifying candidates for one source page. The result
// is sorted by candidate ID; ordering carries no semantic meaning but keeps
// output reproducible. Returns nil for unknown pages and for pages below the
// source minimum.
func (m *Matcher) Matches(pageID string) []models.CandidateMatch {
	src, ok := m.byID[pageID]
	if !ok || len(src.Keywords) < m.cfg.MinKeywords {
		return nil
	}
	return m.matchProfile(src)
}

func (m *Matcher) matchProfile(src *models.PageProfile) []models.CandidateMatch {
	candidates := m.index.Candidates(src.Keywords, src.ID)
	if len(candidates) == 0 {
		return nil
	}

	denom := float64(len(src.Keywords))
	var out []models.CandidateMatch
	for id := range candidates {
		cand := m.byID[id]
		shared := intersect(src.Keywords, cand.Keywords)
		if float64(len(shared))/denom < m.cfg.Threshold {
			continue
		}
		out = append(out, models.CandidateMatch{
			From:        src.ID,
			To:          id,
			Shared:      shared,
			SharedCount: len(shared),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// MatchAll runs the candidate computation for every eligible source page.
// The scatter phase is parallel: workers read only the immutable profiles
// and index, and each writes a distinct result slot, so no shared mutable
// state exists until the caller feeds the collected map into Resolve.
// onProgress, if non-nil, is invoked after each completed page.
func (m *Matcher) MatchAll(ctx context.Context, concurrency int, onProgress func(done, total int)) (map[string][]models.CandidateMatch, error) {
	sources := m.Sources()
	if len(sources) == 0 {
		return map[string][]models.CandidateMatch{}, nil
	}

	if concurrency <= 0 {
		concurrency = 4
	}
	if concurrency > len(sources) {
		concurrency = len(sources)
	}

	results := make([][]models.CandidateMatch, len(sources))
	work := make(chan int, len(sources))
	var done atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					return
				}
				results[i] = m.matchProfile(sources[i])
				n := done.Add(1)
				if onProgress != nil {
					onProgress(int(n), len(sources))
				}
			}
		}()
	}

	for i := range sources {
		work <- i
	}
	close(work)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.CandidateMatch, len(sources))
	for i, src := range sources {
		if len(results[i]) > 0 {
			out[src.ID] = results[i]
		}
	}
	return out, nil
}

// intersect returns the sorted intersection of two keyword sets, iterating
// the source set because the qualifying denominator belongs to it.
func intersect(src, cand map[string]struct{}) []string {
	var shared []string
	for kw := range src {
		if _, ok := cand[kw]; ok {
			shared = append(shared, kw)
		}
	}
	sort.Strings(shared)
	return shared
}
