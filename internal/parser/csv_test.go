package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/lucasvnasc/paginas-semelhantes/internal/models"
)

func TestReadRows_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrEmptyFile,
		},
		{
			name:    "missing clicks column",
			input:   "Landing Page,Query\n/a,shoes\n",
			wantErr: ErrMissingColumns,
		},
		{
			name:    "missing all columns",
			input:   "foo,bar,baz\n1,2,3\n",
			wantErr: ErrMissingColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadRows(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadRows() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadRows_HeaderCaseInsensitive(t *testing.T) {
	input := "landing page,query,url clicks\nhttps://s.com/a,Shoes,3\n"

	rows, _, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestReadRows_Normalization(t *testing.T) {
	input := strings.Join([]string{
		"Landing Page,Query,Url Clicks",
		"https://s.com/a/,Best Shoes,10",   // trailing slash + case fold
		"https://s.com/a,best shoes,10",    // exact duplicate after normalization
		"https://s.com/a,best shoes,5",     // same pair, different clicks: kept
		"https://s.com/b#frag,boots,7",     // fragment URL dropped
		"https://s.com/c,,4",               // blank query dropped
		",boots,4",                         // blank page dropped
		"https://s.com/d,boots,-2",         // negative clicks dropped
		"https://s.com/e,boots,not-a-num",  // non-numeric clicks dropped
		"https://s.com/f,  sandals  ,0",    // zero clicks kept, keyword trimmed
	}, "\n") + "\n"

	rows, stats, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}

	want := []models.Row{
		{Page: "https://s.com/a", Keyword: "best shoes", Clicks: 10},
		{Page: "https://s.com/a", Keyword: "best shoes", Clicks: 5},
		{Page: "https://s.com/f", Keyword: "sandals", Clicks: 0},
	}

	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], w)
		}
	}

	if stats.RowsRead != 9 {
		t.Errorf("RowsRead = %d, want 9", stats.RowsRead)
	}
	if stats.RowsKept != 3 {
		t.Errorf("RowsKept = %d, want 3", stats.RowsKept)
	}
	if stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", stats.Duplicates)
	}
	if stats.DroppedURL != 1 {
		t.Errorf("DroppedURL = %d, want 1", stats.DroppedURL)
	}
	if stats.DroppedClicks != 2 {
		t.Errorf("DroppedClicks = %d, want 2", stats.DroppedClicks)
	}
	if stats.DroppedBlank != 2 {
		t.Errorf("DroppedBlank = %d, want 2", stats.DroppedBlank)
	}
}

func TestReadRows_NoDataRows(t *testing.T) {
	input := "Landing Page,Query,Url Clicks\n"

	rows, stats, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
	if stats.RowsRead != 0 {
		t.Errorf("RowsRead = %d, want 0", stats.RowsRead)
	}
}

func TestReadRows_ShortRecord(t *testing.T) {
	// Records shorter than the column positions are dropped, not fatal.
	input := "Landing Page,Query,Url Clicks\nhttps://s.com/a,shoes\nhttps://s.com/b,boots,3\n"

	rows, stats, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Page != "https://s.com/b" {
		t.Errorf("rows[0].Page = %q, want the full record", rows[0].Page)
	}
	if stats.DroppedBlank != 1 {
		t.Errorf("DroppedBlank = %d, want 1", stats.DroppedBlank)
	}
}
