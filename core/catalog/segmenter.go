package catalog

import (
	"regexp"
	"strings"
)

// Segmenter decomposes compound credit role strings into atomic role
// tokens. A raw role like
//
//	"Producer, Synthesizer [Oberheim, Prophet V]"
//
// yields ["Producer", "Synthesizer", "Oberheim", "Prophet V"]: splitting
// happens on top-level commas only (commas inside brackets never split),
// and each bracket-qualified segment expands to the bare role plus each
// bracket detail as its own token.
//
// IsCompany filters detail tokens that are label/company names rather
// than roles or equipment; it is swappable so the denylist can be tuned
// and tested independently.
type Segmenter struct {
	IsCompany func(string) bool
}

// NewSegmenter returns a segmenter with the default company-name filter.
func NewSegmenter() *Segmenter {
	return &Segmenter{IsCompany: DefaultCompanyFilter}
}

// Segment splits one raw role string into atomic tokens, order preserved.
func (s *Segmenter) Segment(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var tokens []string
	for _, seg := range splitTopLevel(raw) {
		tokens = append(tokens, s.expandSegment(seg)...)
	}
	return tokens
}

// splitTopLevel splits on commas outside brackets. A single left-to-right
// scan tracks nesting depth; unbalanced closers clamp at zero.
func splitTopLevel(raw string) []string {
	var (
		parts []string
		start int
		depth int
	)
	for i, r := range raw {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, raw[start:])

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandSegment turns one top-level segment into tokens. Segments of the
// form "<role> [<detail, detail>]" emit the bare role plus each surviving
// detail; anything else passes through whole.
func (s *Segmenter) expandSegment(seg string) []string {
	open := strings.Index(seg, "[")
	if open < 0 {
		return []string{seg}
	}
	end := strings.LastIndex(seg, "]")
	if end < open {
		// Unclosed bracket: the catalog ships these occasionally.
		// Treat everything after '[' as one detail list.
		end = len(seg)
	}

	var tokens []string
	if role := strings.TrimSpace(seg[:open]); role != "" {
		tokens = append(tokens, role)
	}

	details := seg[open+1 : end]
	for _, d := range strings.Split(details, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if canonical, ok := lookupEquipment(d); ok {
			tokens = append(tokens, canonical)
			continue
		}
		if isNoiseDetail(d) || (s.IsCompany != nil && s.IsCompany(d)) {
			continue
		}
		tokens = append(tokens, d)
	}
	return tokens
}

// equipmentTable maps lowercased makes/models seen in bracket details to
// their canonical spelling. Curated from recurring credits in the catalog.
var equipmentTable = map[string]string{
	"oberheim":      "Oberheim",
	"prophet v":     "Prophet V",
	"prophet 5":     "Prophet V",
	"minimoog":      "Minimoog",
	"moog":          "Moog",
	"arp 2600":      "ARP 2600",
	"arp odyssey":   "ARP Odyssey",
	"fender rhodes": "Fender Rhodes",
	"rhodes":        "Fender Rhodes",
	"wurlitzer":     "Wurlitzer",
	"hammond b3":    "Hammond B3",
	"hammond b-3":   "Hammond B3",
	"clavinet":      "Clavinet",
	"mellotron":     "Mellotron",
	"vocoder":       "Vocoder",
	"tr-808":        "TR-808",
	"roland tr-808": "TR-808",
	"tr-909":        "TR-909",
	"linndrum":      "LinnDrum",
	"linn":          "LinnDrum",
	"dx7":           "DX7",
	"yamaha dx7":    "DX7",
	"juno-60":       "Juno-60",
	"jupiter-8":     "Jupiter-8",
	"synclavier":    "Synclavier",
	"fairlight":     "Fairlight",
	"fairlight cmi": "Fairlight",
	"emulator":      "Emulator",
	"talk box":      "Talk Box",
	"talkbox":       "Talk Box",
}

func lookupEquipment(detail string) (string, bool) {
	canonical, ok := equipmentTable[strings.ToLower(detail)]
	return canonical, ok
}

var (
	// Bare years ("1982") and track/side qualifiers ("A", "B2", "A1 to A4")
	// show up in bracket details and carry no role information.
	yearPattern = regexp.MustCompile(`^\d{4}$`)
	sidePattern = regexp.MustCompile(`^[A-Fa-f]\d{0,2}(\s+(to|-)\s+[A-Fa-f]\d{0,2})?$`)
)

// noiseWords are generic production qualifiers that would otherwise leak
// into the role views as bogus roles.
var noiseWords = map[string]struct{}{
	"uncredited":   {},
	"unconfirmed":  {},
	"unknown":      {},
	"all tracks":   {},
	"both sides":   {},
	"intro":        {},
	"outro":        {},
	"bonus track":  {},
	"bonus tracks": {},
	"reissue":      {},
	"remastered":   {},
	"overdub":      {},
	"overdubs":     {},
	"original":     {},
	"additional":   {},
	"assistant":    {},
	"stereo":       {},
	"mono":         {},
	"live":         {},
}

func isNoiseDetail(detail string) bool {
	if yearPattern.MatchString(detail) || sidePattern.MatchString(detail) {
		return true
	}
	_, noisy := noiseWords[strings.ToLower(detail)]
	return noisy
}

// companyMarkers flag detail tokens that name labels, studios or other
// companies instead of roles or equipment.
var companyMarkers = []string{
	"records", "recordings", "recording co", "studios", "studio ",
	"ltd", "inc.", "gmbh", "corp", "productions", "publishing",
	"distribution", "music group", "entertainment",
}

// DefaultCompanyFilter is the stock company-name predicate. It matches on
// lowercase substring markers and is intentionally loose; swap in a
// stricter predicate via Segmenter.IsCompany when it misfires.
func DefaultCompanyFilter(detail string) bool {
	lower := strings.ToLower(detail)
	for _, marker := range companyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
