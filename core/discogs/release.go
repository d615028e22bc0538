package discogs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CrateFM/core/catalog"
	"CrateFM/model"
)

// releasePayload mirrors the catalog service's release detail shape.
type releasePayload struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Artists []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Genres  []string `json:"genres"`
	Styles  []string `json:"styles"`
	Formats []struct {
		Name string `json:"name"`
	} `json:"formats"`
	Images []struct {
		URI string `json:"uri"`
	} `json:"images"`
	Tracklist []struct {
		Position string `json:"position"`
		Title    string `json:"title"`
		Duration string `json:"duration"`
		Type     string `json:"type_"`
	} `json:"tracklist"`
	ExtraArtists []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"extraartists"`
}

// Release fetches one release detail and maps it to a candidate record.
func (c *Client) Release(ctx context.Context, id int64) (*model.AlbumRecord, error) {
	var payload releasePayload
	if err := c.get(ctx, fmt.Sprintf("/releases/%d", id), &payload); err != nil {
		return nil, err
	}
	return mapRelease(&payload)
}

// mapRelease converts a release payload to an AlbumRecord. A payload
// without identifier or title is a parse failure; the batch caller
// counts it and moves on.
func mapRelease(p *releasePayload) (*model.AlbumRecord, error) {
	if p.ID == 0 || strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: release %d missing id or title", catalog.ErrParseFailure, p.ID)
	}

	rec := &model.AlbumRecord{
		ID:        p.ID,
		Title:     strings.TrimSpace(p.Title),
		Artist:    joinArtists(p),
		Year:      p.Year,
		Type:      "release",
		Genres:    p.Genres,
		Styles:    p.Styles,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, f := range p.Formats {
		if f.Name != "" {
			rec.Formats = append(rec.Formats, f.Name)
		}
	}
	for _, img := range p.Images {
		if img.URI != "" {
			rec.Images = append(rec.Images, img.URI)
		}
	}
	if len(rec.Images) > 0 {
		rec.CoverImage = rec.Images[0]
	}

	for _, t := range p.Tracklist {
		// Heading rows ("Side A") carry no title position data.
		if t.Type == "heading" || strings.TrimSpace(t.Title) == "" {
			continue
		}
		rec.Tracklist = append(rec.Tracklist, model.TrackEntry{
			Position: t.Position,
			Title:    strings.TrimSpace(t.Title),
			Duration: t.Duration,
		})
	}
	rec.TrackCount = len(rec.Tracklist)

	for _, ea := range p.ExtraArtists {
		name := cleanArtistName(ea.Name)
		if name == "" || strings.TrimSpace(ea.Role) == "" {
			continue
		}
		rec.Credits = append(rec.Credits, model.CreditEntry{
			Name:     name,
			Role:     strings.TrimSpace(ea.Role),
			ArtistID: ea.ID,
		})
	}

	return rec, nil
}

func joinArtists(p *releasePayload) string {
	var names []string
	for _, a := range p.Artists {
		if name := cleanArtistName(a.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(names, ", ")
}

// cleanArtistName strips the catalog's disambiguation suffix:
// "Phil Collins (2)" and "Phil Collins" are the same artist here.
func cleanArtistName(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, " ("); idx > 0 && strings.HasSuffix(name, ")") {
		suffix := name[idx+2 : len(name)-1]
		allDigits := suffix != ""
		for _, r := range suffix {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			name = name[:idx]
		}
	}
	return name
}
