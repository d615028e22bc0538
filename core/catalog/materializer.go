package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"CrateFM/model"
)

// Materializer computes the three derived views (artists, tracks, roles)
// from the album working set. Each view keeps an independent memo of
// (last fingerprint, result): a repeated call with an unchanged
// fingerprint returns the cached result without rescanning.
//
// The fingerprint is a cheap proxy and misses in-place field edits that
// change neither count nor endpoint identities. That is an accepted
// limitation; a rolling hash over per-record versions would close it if
// interior edits ever become a supported operation.
//
// Long passes check the context at batch boundaries so callers can bound
// the work.
//
// Safe for concurrent use: one mutex serializes view computation and the
// memo install, so HTTP handlers can call the views directly.
type Materializer struct {
	segmenter   *Segmenter
	categorizer Categorizer
	batchSize   int

	mu sync.Mutex

	artistsFP Fingerprint
	artistsOK bool
	artists   []model.ArtistView

	tracksFP Fingerprint
	tracksOK bool
	tracks   []model.TrackView

	rolesFP Fingerprint
	rolesOK bool
	roles   []model.RoleView
}

// NewMaterializer builds a materializer. batchSize bounds how many albums
// are scanned between context checks; values below 1 fall back to 200.
func NewMaterializer(segmenter *Segmenter, categorizer Categorizer, batchSize int) *Materializer {
	if batchSize < 1 {
		batchSize = 200
	}
	return &Materializer{
		segmenter:   segmenter,
		categorizer: categorizer,
		batchSize:   batchSize,
	}
}

// Invalidate drops all three memos.
func (m *Materializer) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.artistsOK = false
	m.tracksOK = false
	m.rolesOK = false
}

// Tracks materializes the track view: one entry per normalized title,
// frequency counting distinct contributing albums. An album contributes
// at most once to a title even when its own track list repeats it.
func (m *Materializer) Tracks(ctx context.Context, records []model.AlbumRecord) ([]model.TrackView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fp := fingerprintOf(records)
	if m.tracksOK && fp == m.tracksFP {
		return m.tracks, nil
	}

	byTitle := make(map[string]*model.TrackView)
	var order []string

	for i := range records {
		if err := m.checkpoint(ctx, i); err != nil {
			return nil, err
		}
		album := &records[i]
		contributed := make(map[string]struct{}, len(album.Tracklist))

		for _, entry := range album.Tracklist {
			key := normalizeKey(entry.Title)
			if key == "" {
				continue
			}
			if _, done := contributed[key]; done {
				continue
			}
			contributed[key] = struct{}{}

			occ := model.TrackOccurrence{
				AlbumID:    album.ID,
				AlbumTitle: album.Title,
				Artist:     album.Artist,
				Position:   entry.Position,
				Duration:   entry.Duration,
			}
			if view, ok := byTitle[key]; ok {
				view.Frequency++
				view.Albums = append(view.Albums, occ)
			} else {
				byTitle[key] = &model.TrackView{
					Title:     key,
					Display:   strings.TrimSpace(entry.Title),
					Frequency: 1,
					Albums:    []model.TrackOccurrence{occ},
				}
				order = append(order, key)
			}
		}
	}

	out := make([]model.TrackView, 0, len(order))
	for _, key := range order {
		out = append(out, *byTitle[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Title < out[j].Title
	})

	m.tracks = out
	m.tracksFP = fp
	m.tracksOK = true
	return out, nil
}

// artistAccum gathers one artist's roles across one album before they are
// folded into the aggregate, so an album counts once per bucket no matter
// how many roles of that category the artist held on it.
type artistAccum struct {
	roles     map[string]struct{}
	musical   bool
	technical bool
}

// Artists materializes the artist view from credit entries. Compound role
// strings are decomposed, each token categorized once, and bracket
// qualifiers stripped for display on musical tokens only.
func (m *Materializer) Artists(ctx context.Context, records []model.AlbumRecord) ([]model.ArtistView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fp := fingerprintOf(records)
	if m.artistsOK && fp == m.artistsFP {
		return m.artists, nil
	}

	byName := make(map[string]*model.ArtistView)
	var order []string

	for i := range records {
		if err := m.checkpoint(ctx, i); err != nil {
			return nil, err
		}
		album := &records[i]

		perArtist := make(map[string]*artistAccum)
		for _, credit := range album.Credits {
			name := strings.TrimSpace(credit.Name)
			if name == "" {
				continue
			}
			acc := perArtist[name]
			if acc == nil {
				acc = &artistAccum{roles: make(map[string]struct{})}
				perArtist[name] = acc
			}
			for _, token := range m.segmenter.Segment(credit.Role) {
				cat := m.categorizer.Categorize(token)
				clean := CleanRole(token, cat)
				if clean == "" {
					continue
				}
				acc.roles[clean] = struct{}{}
				if cat == model.RoleMusical {
					acc.musical = true
				} else {
					acc.technical = true
				}
			}
		}

		for name, acc := range perArtist {
			view, ok := byName[name]
			if !ok {
				view = &model.ArtistView{
					Name:     name,
					RoleFreq: make(map[string]int),
				}
				byName[name] = view
				order = append(order, name)
			}
			view.AlbumCount++
			if acc.musical {
				view.MusicalAlbums++
				view.Musical = true
			}
			if acc.technical {
				view.TechnicalAlbums++
				view.Technical = true
			}
			for role := range acc.roles {
				view.RoleFreq[role]++
			}
		}
	}

	out := make([]model.ArtistView, 0, len(order))
	for _, name := range order {
		view := byName[name]
		view.Roles = make([]string, 0, len(view.RoleFreq))
		for role := range view.RoleFreq {
			view.Roles = append(view.Roles, role)
		}
		sort.Strings(view.Roles)
		out = append(out, *view)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AlbumCount != out[j].AlbumCount {
			return out[i].AlbumCount > out[j].AlbumCount
		}
		return out[i].Name < out[j].Name
	})

	m.artists = out
	m.artistsFP = fp
	m.artistsOK = true
	return out, nil
}

// Roles materializes the role view: per cleaned role name, the distinct
// (artist, album) occurrences and per-artist album counts.
func (m *Materializer) Roles(ctx context.Context, records []model.AlbumRecord) ([]model.RoleView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fp := fingerprintOf(records)
	if m.rolesOK && fp == m.rolesFP {
		return m.roles, nil
	}

	type roleAccum struct {
		view *model.RoleView
		seen map[string]map[int64]struct{} // artist -> album ids
	}
	byRole := make(map[string]*roleAccum)
	var order []string

	for i := range records {
		if err := m.checkpoint(ctx, i); err != nil {
			return nil, err
		}
		album := &records[i]

		for _, credit := range album.Credits {
			name := strings.TrimSpace(credit.Name)
			if name == "" {
				continue
			}
			for _, token := range m.segmenter.Segment(credit.Role) {
				cat := m.categorizer.Categorize(token)
				clean := CleanRole(token, cat)
				if clean == "" {
					continue
				}

				acc, ok := byRole[clean]
				if !ok {
					acc = &roleAccum{
						view: &model.RoleView{
							Name:         clean,
							Category:     cat,
							ArtistAlbums: make(map[string]int),
						},
						seen: make(map[string]map[int64]struct{}),
					}
					byRole[clean] = acc
					order = append(order, clean)
				}

				albums := acc.seen[name]
				if albums == nil {
					albums = make(map[int64]struct{})
					acc.seen[name] = albums
				}
				if _, done := albums[album.ID]; done {
					continue
				}
				albums[album.ID] = struct{}{}

				acc.view.Occurrences = append(acc.view.Occurrences, model.RoleOccurrence{
					Artist:     name,
					AlbumID:    album.ID,
					AlbumTitle: album.Title,
				})
				acc.view.ArtistAlbums[name]++
				acc.view.Frequency++
			}
		}
	}

	out := make([]model.RoleView, 0, len(order))
	for _, key := range order {
		out = append(out, *byRole[key].view)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Name < out[j].Name
	})

	m.roles = out
	m.rolesFP = fp
	m.rolesOK = true
	return out, nil
}

// checkpoint is the cooperative yield point between album batches.
func (m *Materializer) checkpoint(ctx context.Context, i int) error {
	if i > 0 && i%m.batchSize == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
