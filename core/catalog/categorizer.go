package catalog

import (
	"strings"
	"sync"

	"CrateFM/model"
)

// Categorizer classifies one atomic role token as musical (performance)
// or technical (studio/production/artwork).
type Categorizer interface {
	Categorize(token string) model.RoleCategory
}

// technicalMarkers are lowercase substrings that mark a role as
// technical. Anything not matched counts as musical, which keeps
// instruments and vocal credits out of the table entirely.
var technicalMarkers = []string{
	"produc",   // Producer, Co-producer, Executive Producer, Production
	"engineer", // Engineer, Mixing Engineer, Assistant Engineer
	"mix",      // Mixed By, Remix
	"master",   // Mastered By, Remastered By, Mastering
	"record",   // Recorded By, Recording Supervisor
	"lacquer",  // Lacquer Cut By
	"edit",     // Edited By
	"transfer", // Transferred By
	"design",   // Design, Sleeve Design
	"artwork",
	"art direction",
	"photograph", // Photography By
	"illustrat",  // Illustration
	"layout",
	"liner notes",
	"sleeve notes",
	"supervis", // Supervised By
	"coordinat",
	"compil", // Compiled By
	"a&r",
	"management",
	"legal",
}

// KeywordCategorizer is the stock Categorizer: substring keyword matching
// with per-token memoization so each distinct token is classified exactly
// once per process.
type KeywordCategorizer struct {
	mu   sync.Mutex
	memo map[string]model.RoleCategory
}

// NewKeywordCategorizer builds the stock categorizer.
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{memo: make(map[string]model.RoleCategory)}
}

// Categorize classifies one token. Results are memoized by exact token.
func (c *KeywordCategorizer) Categorize(token string) model.RoleCategory {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cat, ok := c.memo[token]; ok {
		return cat
	}

	cat := model.RoleMusical
	lower := strings.ToLower(token)
	for _, marker := range technicalMarkers {
		if strings.Contains(lower, marker) {
			cat = model.RoleTechnical
			break
		}
	}
	c.memo[token] = cat
	return cat
}

// CleanRole prepares a role token for display and view keying. Bracket
// qualifiers are stripped for musical tokens only; technical tokens keep
// their detail verbatim.
func CleanRole(token string, cat model.RoleCategory) string {
	if cat != model.RoleMusical {
		return strings.TrimSpace(token)
	}
	if open := strings.Index(token, "["); open >= 0 {
		end := strings.LastIndex(token, "]")
		if end > open {
			token = token[:open] + token[end+1:]
		} else {
			token = token[:open]
		}
	}
	return strings.TrimSpace(token)
}
