package catalog

import (
	"testing"

	"CrateFM/model"
)

func TestKeywordCategorizer(t *testing.T) {
	tests := []struct {
		token string
		want  model.RoleCategory
	}{
		{"Producer", model.RoleTechnical},
		{"Executive Producer", model.RoleTechnical},
		{"Engineer", model.RoleTechnical},
		{"Mixed By", model.RoleTechnical},
		{"Mastered By", model.RoleTechnical},
		{"Lacquer Cut By", model.RoleTechnical},
		{"Photography By", model.RoleTechnical},
		{"Design", model.RoleTechnical},
		{"Vocals", model.RoleMusical},
		{"Guitar", model.RoleMusical},
		{"Synthesizer", model.RoleMusical},
		{"Bass", model.RoleMusical},
		{"Drums", model.RoleMusical},
		{"Written-By", model.RoleMusical},
	}

	cat := NewKeywordCategorizer()
	for _, tt := range tests {
		if got := cat.Categorize(tt.token); got != tt.want {
			t.Errorf("Categorize(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestCategorizerMemoizes(t *testing.T) {
	cat := NewKeywordCategorizer()

	first := cat.Categorize("Producer")
	second := cat.Categorize("Producer")
	if first != second {
		t.Fatalf("memoized category changed: %v then %v", first, second)
	}
	if len(cat.memo) != 1 {
		t.Fatalf("memo size = %d, want 1", len(cat.memo))
	}
}

func TestCleanRole(t *testing.T) {
	tests := []struct {
		name  string
		token string
		cat   model.RoleCategory
		want  string
	}{
		{"musical strips brackets", "Synthesizer [Moog]", model.RoleMusical, "Synthesizer"},
		{"musical without brackets untouched", "Guitar", model.RoleMusical, "Guitar"},
		{"technical keeps brackets", "Remix [Extended]", model.RoleTechnical, "Remix [Extended]"},
		{"musical unclosed bracket", "Piano [Rhodes", model.RoleMusical, "Piano"},
		{"whitespace trimmed", "  Vocals  ", model.RoleMusical, "Vocals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanRole(tt.token, tt.cat); got != tt.want {
				t.Fatalf("CleanRole(%q, %v) = %q, want %q", tt.token, tt.cat, got, tt.want)
			}
		})
	}
}
