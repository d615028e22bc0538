package discogs

import (
	"encoding/json"
	"errors"
	"testing"

	"CrateFM/core/catalog"
)

func TestMapRelease(t *testing.T) {
	raw := `{
		"id": 249504,
		"title": "  Head Hunters ",
		"year": 1973,
		"artists": [{"id": 1, "name": "Herbie Hancock"}],
		"genres": ["Jazz"],
		"formats": [{"name": "Vinyl"}],
		"images": [{"uri": "https://img.example/cover.jpg"}],
		"tracklist": [
			{"position": "", "title": "Side One", "type_": "heading"},
			{"position": "A1", "title": "Chameleon", "duration": "15:41", "type_": "track"}
		],
		"extraartists": [{"id": 9, "name": "David Rubinson", "role": "Producer"}]
	}`

	var p releasePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	rec, err := mapRelease(&p)
	if err != nil {
		t.Fatalf("mapRelease: %v", err)
	}

	if rec.Title != "Head Hunters" || rec.Artist != "Herbie Hancock" || rec.Year != 1973 {
		t.Fatalf("record = %+v", rec)
	}
	// Heading rows never become tracks.
	if rec.TrackCount != 1 || rec.Tracklist[0].Title != "Chameleon" {
		t.Fatalf("tracklist = %+v", rec.Tracklist)
	}
	if rec.CoverImage != "https://img.example/cover.jpg" {
		t.Fatalf("cover = %q", rec.CoverImage)
	}
	if len(rec.Credits) != 1 || rec.Credits[0].Role != "Producer" {
		t.Fatalf("credits = %+v", rec.Credits)
	}
}

func TestMapReleaseMissingFieldsIsParseFailure(t *testing.T) {
	tests := []struct {
		name    string
		payload releasePayload
	}{
		{"missing id", releasePayload{Title: "Untitled"}},
		{"missing title", releasePayload{ID: 42}},
		{"blank title", releasePayload{ID: 42, Title: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapRelease(&tt.payload)
			if !errors.Is(err, catalog.ErrParseFailure) {
				t.Fatalf("err = %v, want ErrParseFailure", err)
			}
		})
	}
}

func TestCleanArtistName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Phil Collins (2)", "Phil Collins"},
		{"Phil Collins", "Phil Collins"},
		{"Matmos (Not The Duo)", "Matmos (Not The Duo)"},
		{"  Sade (3)  ", "Sade"},
		{"(2)", "(2)"},
	}

	for _, tt := range tests {
		if got := cleanArtistName(tt.in); got != tt.want {
			t.Errorf("cleanArtistName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
