package models

import "testing"

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://site.com/page", "https://site.com/page"},
		{"trailing slash", "https://site.com/page/", "https://site.com/page"},
		{"multiple trailing slashes", "https://site.com/page///", "https://site.com/page"},
		{"surrounding whitespace", "  https://site.com/page \n", "https://site.com/page"},
		{"fragment dropped", "https://site.com/page#section", ""},
		{"bare fragment dropped", "#top", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePage(tt.in)
			if got != tt.want {
				t.Errorf("NormalizePage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldKeyword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase unchanged", "best shoes", "best shoes"},
		{"uppercase folded", "Best Shoes", "best shoes"},
		{"mixed case", "bEsT sHoEs", "best shoes"},
		{"trimmed", "  best shoes ", "best shoes"},
		{"internal spaces preserved", "best  shoes", "best  shoes"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoldKeyword(tt.in)
			if got != tt.want {
				t.Errorf("FoldKeyword(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPageProfileHasKeyword(t *testing.T) {
	p := &PageProfile{
		ID:       "https://site.com/a",
		Keywords: map[string]struct{}{"shoes": {}, "boots": {}},
		Clicks:   10,
	}

	if !p.HasKeyword("shoes") {
		t.Error("HasKeyword(shoes) = false, want true")
	}
	if p.HasKeyword("sandals") {
		t.Error("HasKeyword(sandals) = true, want false")
	}
}
