package model

// RoleCategory splits atomic role tokens into performance roles and
// studio/production roles.
type RoleCategory string

const (
	RoleMusical   RoleCategory = "musical"
	RoleTechnical RoleCategory = "technical"
)

// ArtistView is the derived per-artist aggregate. Rebuilt exclusively by
// the materializer; consumers must treat it as read-only.
type ArtistView struct {
	Name            string         `json:"name"`
	AlbumCount      int            `json:"albumCount"`
	MusicalAlbums   int            `json:"musicalAlbums"`
	TechnicalAlbums int            `json:"technicalAlbums"`
	RoleFreq        map[string]int `json:"roleFreq"`
	Roles           []string       `json:"roles"` // sorted
	Musical         bool           `json:"musical"`
	Technical       bool           `json:"technical"`
}

// TrackOccurrence locates one appearance of a track title on an album.
type TrackOccurrence struct {
	AlbumID    int64  `json:"albumId"`
	AlbumTitle string `json:"albumTitle"`
	Artist     string `json:"artist"`
	Position   string `json:"position"`
	Duration   string `json:"duration,omitempty"`
}

// TrackView is the derived per-title aggregate. Frequency counts distinct
// contributing albums: an album appears at most once even when its own
// track list repeats the title.
type TrackView struct {
	Title     string            `json:"title"` // normalized key
	Display   string            `json:"display"`
	Frequency int               `json:"frequency"`
	Albums    []TrackOccurrence `json:"albums"`
}

// RoleOccurrence is one (artist, album) appearance of a role.
type RoleOccurrence struct {
	Artist     string `json:"artist"`
	AlbumID    int64  `json:"albumId"`
	AlbumTitle string `json:"albumTitle"`
}

// RoleView is the derived per-role aggregate, keyed by cleaned role name.
type RoleView struct {
	Name         string           `json:"name"`
	Frequency    int              `json:"frequency"`
	Category     RoleCategory     `json:"category"`
	Occurrences  []RoleOccurrence `json:"occurrences"`
	ArtistAlbums map[string]int   `json:"artistAlbums"`
}
