package ai

import (
	"testing"
)

type extractionPayload struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

func TestUnmarshalFlexible_StandardJSON(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`{"name": "Alice", "types": ["PERSON"]}`, &out)
	if err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if out.Name != "Alice" || len(out.Types) != 1 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`"{\"name\": \"Alice\", \"types\": []}"`, &out)
	if err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if out.Name != "Alice" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_Malformed(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`{name: "Alice", types: ["PERSON",]}`, &out)
	if err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if out.Name != "Alice" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DuplicateLeadingBrace(t *testing.T) {
	var out extractionPayload
	err := UnmarshalFlexible(`{ {"name": "Alice", "types": []}`, &out)
	if err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if out.Name != "Alice" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestStripDuplicateLeadingBrace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{`{ {"a": 1}`, `{"a": 1}`},
		{`  { {"a": 1}  `, `{"a": 1}`},
		{`plain text`, `plain text`},
	}

	for _, tt := range tests {
		if got := stripDuplicateLeadingBrace(tt.input); got != tt.want {
			t.Errorf("stripDuplicateLeadingBrace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(&extractionPayload{})
	if schema == nil {
		t.Fatal("GenerateSchema() returned nil")
	}
}
