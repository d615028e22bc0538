package model

import "time"

// AlbumRecord is the authoritative entity for one release in the catalog.
// The ID is the external catalog service's release identifier and is unique
// within the working set.
type AlbumRecord struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Year       int           `json:"year"` // 0 = unknown
	Role       string        `json:"role,omitempty"`
	Type       string        `json:"type,omitempty"`
	Genres     []string      `json:"genres,omitempty"`
	Styles     []string      `json:"styles,omitempty"`
	Formats    []string      `json:"formats,omitempty"`
	Images     []string      `json:"images,omitempty"`
	Tracklist  []TrackEntry  `json:"tracklist,omitempty"`
	TrackCount int           `json:"trackCount"`
	Credits    []CreditEntry `json:"credits,omitempty"`
	CoverImage string        `json:"coverImage,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// YearKnown reports whether the record carries a plausible release year.
// The catalog occasionally ships 0 or nonsense years for bootlegs and
// promos; those are treated as unknown.
func (a *AlbumRecord) YearKnown() bool {
	return a.Year >= 1900 && a.Year <= time.Now().Year()+5
}

// TrackEntry is one entry of an album's ordered track list. Position and
// duration stay strings: vinyl positions are side-qualified ("A1", "B2")
// and durations arrive preformatted ("4:33") from the catalog.
type TrackEntry struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// CreditEntry is one (artist, role-string) pair attached to an album.
// Role may be comma- and bracket-compound, e.g.
// "Producer, Synthesizer [Oberheim, Prophet V]"; decomposition into atomic
// role tokens happens downstream.
type CreditEntry struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	ArtistID int64  `json:"artistId,omitempty"`
}
