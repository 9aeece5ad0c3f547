package cmd

import (
	"testing"

	"github.com/vuebench/vuebench/internal/fixture"
)

func TestFilterModels(t *testing.T) {
	models := []string{"qwen2.5-coder:7b", "llama3.1:8b", "codellama:13b"}

	tests := []struct {
		name   string
		filter string
		want   int
	}{
		{"empty filter returns all", "", 3},
		{"exact match", "llama3.1:8b", 1},
		{"no match", "mistral:7b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterModels(models, tt.filter)
			if len(got) != tt.want {
				t.Errorf("filterModels(%q) returned %d, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

func TestFilterFixtures(t *testing.T) {
	fixtures := []*fixture.Fixture{
		{Name: "props-typing", Category: "typescript"},
		{Name: "ref-typing", Category: "typescript"},
		{Name: "fix-compile-error", Category: "agent"},
	}

	tests := []struct {
		name  string
		nameF string
		catF  string
		want  int
	}{
		{"empty filters returns all", "", "", 3},
		{"filter by name", "props-typing", "", 1},
		{"filter by category", "", "typescript", 2},
		{"combined filters", "ref-typing", "typescript", 1},
		{"combined mismatch", "ref-typing", "agent", 0},
		{"no match by name", "nonexistent", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterFixtures(fixtures, tt.nameF, tt.catF)
			if len(got) != tt.want {
				t.Errorf("filterFixtures(name=%q, cat=%q) returned %d, want %d", tt.nameF, tt.catF, len(got), tt.want)
			}
		})
	}
}
