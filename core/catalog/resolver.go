package catalog

import (
	"strings"
	"unicode"

	"CrateFM/model"
)

// Resolution is the duplicate resolver's verdict for one candidate.
type Resolution int

const (
	// ResolutionNew: no existing record matches, the candidate is appended.
	ResolutionNew Resolution = iota
	// ResolutionDuplicate: the candidate is already represented, discard it.
	ResolutionDuplicate
	// ResolutionReplace: an existing record is a later reissue of the
	// candidate, the candidate takes its place.
	ResolutionReplace
)

// Resolve decides new/duplicate/replace for a candidate against the
// existing working set. Decision order:
//
//  1. Exact identifier match -> duplicate.
//  2. Match by (title, artist):
//     same year -> duplicate; candidate strictly earlier -> replace
//     (earliest release is canonical); strictly later -> duplicate;
//     either year unknown -> duplicate.
//  3. No match -> new.
//
// Identifier equality outranks the title/artist heuristic; earliest-year
// -wins is the canonicalization rule for reissues. Returns the index of
// the matched record, or -1 for ResolutionNew.
func Resolve(existing []model.AlbumRecord, candidate *model.AlbumRecord) (Resolution, int) {
	for i := range existing {
		if existing[i].ID == candidate.ID {
			return ResolutionDuplicate, i
		}
	}

	candKey := recordKey(candidate.Title, candidate.Artist)
	for i := range existing {
		if recordKey(existing[i].Title, existing[i].Artist) != candKey {
			continue
		}

		if !existing[i].YearKnown() || !candidate.YearKnown() {
			// Missing year: conservative default, keep what we have.
			return ResolutionDuplicate, i
		}
		switch {
		case candidate.Year < existing[i].Year:
			return ResolutionReplace, i
		default:
			return ResolutionDuplicate, i
		}
	}

	return ResolutionNew, -1
}

// recordKey normalizes (title, artist) for duplicate matching: lowercase,
// non-alphanumerics collapsed to single spaces.
func recordKey(title, artist string) string {
	return normalizeKey(title) + "\x00" + normalizeKey(artist)
}

// normalizeKey converts a string to a canonical form: lowercase, drop
// non-letter/digit characters, compress runs of separators to one space.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
