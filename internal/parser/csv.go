// Package parser provides ingestion and normalization of Search Console
// CSV exports.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

// Column names as produced by the Looker Studio export of Search Console
// data. Matching is case-insensitive but the canonical spelling is this one.
const (
	ColPage   = "Landing Page"
	ColQuery  = "Query"
	ColClicks = "Url Clicks"
)

// Sentinel errors for ingestion. Use errors.Is() in calling code.
var (
	// ErrMissingColumns indicates the export lacks one or more of the
	// required columns. No partial result is produced.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrEmptyFile indicates the input had no header row at all.
	ErrEmptyFile = errors.New("empty input file")
)

// Stats summarizes what normalization kept and dropped.
type Stats struct {
	RowsRead      int
	RowsKept      int
	DroppedBlank  int
	DroppedClicks int
	DroppedURL    int
	Duplicates    int
}

// ReadRows parses a Search Console CSV export into normalized rows:
// canonical page URLs (trailing-slash-insensitive, fragment URLs dropped),
// case-folded keywords, non-negative integer clicks, exact duplicate rows
// removed. Row order is preserved.
func ReadRows(r io.Reader) ([]models.Row, *Stats, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{}
	seen := make(map[models.Row]struct{})
	var rows []models.Row

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", stats.RowsRead+2, err)
		}
		stats.RowsRead++

		row, reason := normalizeRecord(record, cols)
		switch reason {
		case dropNone:
		case dropBlank:
			stats.DroppedBlank++
			continue
		case dropClicks:
			stats.DroppedClicks++
			continue
		case dropURL:
			stats.DroppedURL++
			continue
		}

		if _, dup := seen[row]; dup {
			stats.Duplicates++
			continue
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
		stats.RowsKept++
	}

	return rows, stats, nil
}

// columnIndexes holds the positions of the three required columns.
type columnIndexes struct {
	page   int
	query  int
	clicks int
}

func locateColumns(header []string) (columnIndexes, error) {
	idx := columnIndexes{page: -1, query: -1, clicks: -1}
	for i, name := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(name), ColPage):
			idx.page = i
		case strings.EqualFold(strings.TrimSpace(name), ColQuery):
			idx.query = i
		case strings.EqualFold(strings.TrimSpace(name), ColClicks):
			idx.clicks = i
		}
	}

	var missing []string
	if idx.page < 0 {
		missing = append(missing, ColPage)
	}
	if idx.query < 0 {
		missing = append(missing, ColQuery)
	}
	if idx.clicks < 0 {
		missing = append(missing, ColClicks)
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

type dropReason int

const (
	dropNone dropReason = iota
	dropBlank
	dropClicks
	dropURL
)

func normalizeRecord(record []string, cols columnIndexes) (models.Row, dropReason) {
	if cols.page >= len(record) || cols.query >= len(record) || cols.clicks >= len(record) {
		return models.Row{}, dropBlank
	}

	rawPage := strings.TrimSpace(record[cols.page])
	rawQuery := strings.TrimSpace(record[cols.query])
	rawClicks := strings.TrimSpace(record[cols.clicks])
	if rawPage == "" || rawQuery == "" || rawClicks == "" {
		return models.Row{}, dropBlank
	}

	clicks, err := strconv.ParseInt(rawClicks, 10, 64)
	if err != nil || clicks < 0 {
		return models.Row{}, dropClicks
	}

	page := models.NormalizePage(rawPage)
	if page == "" {
		return models.Row{}, dropURL
	}

	return models.Row{
		Page:    page,
		Keyword: models.FoldKeyword(rawQuery),
		Clicks:  uint64(clicks),
	}, dropNone
}
