package graph

import (
	"strings"
	"testing"
)

func TestSplitIntoSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple sentences",
			text: "Alice works at Acme. Bob lives in Berlin.",
			want: []string{"Alice works at Acme.", "Bob lives in Berlin."},
		},
		{
			name: "paragraph break ends sentence",
			text: "A line without punctuation\n\nAnother paragraph.",
			want: []string{"A line without punctuation", "Another paragraph."},
		},
		{
			name: "numeric listing not split",
			text: "1. First item continues here.",
			want: []string{"1. First item continues here."},
		},
		{
			name: "trailing quote kept with sentence",
			text: `She said "stop." Then left.`,
			want: []string{`She said "stop."`, "Then left."},
		},
		{
			name: "empty input",
			text: "   \n\n  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitIntoSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("splitIntoSentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTransformIntoUnits_RespectsTokenBudget(t *testing.T) {
	var sb strings.Builder
	for range 40 {
		sb.WriteString("Alice works at the Acme Corporation in Berlin. ")
	}

	units, err := transformIntoUnits(sb.String(), "o200k_base", 100)
	if err != nil {
		t.Fatalf("transformIntoUnits() error = %v", err)
	}
	if len(units) < 2 {
		t.Fatalf("expected multiple units for long text, got %d", len(units))
	}

	prevEnd := 0
	for i, u := range units {
		if u.text == "" {
			t.Errorf("unit %d has empty text", i)
		}
		if u.id == "" {
			t.Errorf("unit %d has empty id", i)
		}
		if u.start != prevEnd {
			t.Errorf("unit %d starts at %d, want %d", i, u.start, prevEnd)
		}
		prevEnd = u.end
	}
}

func TestTransformIntoUnits_EmptyText(t *testing.T) {
	units, err := transformIntoUnits("", "o200k_base", 100)
	if err != nil {
		t.Fatalf("transformIntoUnits() error = %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected no units, got %d", len(units))
	}
}

func TestTransformIntoUnits_SingleShortText(t *testing.T) {
	units, err := transformIntoUnits("Alice works at Acme.", "o200k_base", 100)
	if err != nil {
		t.Fatalf("transformIntoUnits() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].text != "Alice works at Acme." {
		t.Errorf("unit text = %q", units[0].text)
	}
}
