package discogs

import (
	"context"
	"errors"
	"time"

	"CrateFM/core/catalog"
	"CrateFM/logger"
	"CrateFM/model"
)

// CoverStore mirrors album cover images into durable storage. May be nil.
type CoverStore interface {
	Mirror(ctx context.Context, albumID int64, url string) error
}

// Scraper walks the user's collection folder page by page, fetches each
// release detail and feeds candidates through the catalog manager. One
// failed release never aborts the run.
type Scraper struct {
	client   *Client
	manager  *catalog.Manager
	covers   CoverStore
	username string
	delay    time.Duration
	perPage  int
}

// NewScraper wires a scraper. covers may be nil to skip mirroring.
func NewScraper(client *Client, manager *catalog.Manager, covers CoverStore, username string, delay time.Duration) *Scraper {
	return &Scraper{
		client:   client,
		manager:  manager,
		covers:   covers,
		username: username,
		delay:    delay,
		perPage:  100,
	}
}

// Run scrapes the whole collection once: list every release id, fetch
// details, then ingest as one batch.
func (s *Scraper) Run(ctx context.Context) (catalog.BatchResult, error) {
	ids, err := s.listReleaseIDs(ctx)
	if err != nil {
		return catalog.BatchResult{}, err
	}

	var (
		candidates []model.AlbumRecord
		failed     int
	)
	for _, id := range ids {
		rec, err := s.client.Release(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return catalog.BatchResult{}, ctx.Err()
			}
			// Parse failures and transient fetch errors alike: count,
			// log, keep going.
			failed++
			if errors.Is(err, catalog.ErrParseFailure) {
				logger.Warn("Release skipped", logger.Int64("id", id), logger.ErrorField(err))
			} else {
				logger.Warn("Release fetch failed", logger.Int64("id", id), logger.ErrorField(err))
			}
			s.pause(ctx)
			continue
		}
		candidates = append(candidates, *rec)
		s.pause(ctx)
	}

	result := s.manager.IngestBatch(ctx, candidates, "scrape", failed)

	if s.covers != nil {
		for i := range candidates {
			if candidates[i].CoverImage == "" {
				continue
			}
			if err := s.covers.Mirror(ctx, candidates[i].ID, candidates[i].CoverImage); err != nil {
				logger.Warn("Cover mirror failed",
					logger.Int64("id", candidates[i].ID), logger.ErrorField(err))
			}
		}
	}

	return result, nil
}

func (s *Scraper) listReleaseIDs(ctx context.Context) ([]int64, error) {
	var (
		ids  []int64
		page = 1
	)
	for {
		listing, err := s.client.CollectionPage(ctx, s.username, page, s.perPage)
		if err != nil {
			return nil, err
		}
		for _, r := range listing.Releases {
			if r.BasicInformation.ID != 0 {
				ids = append(ids, r.BasicInformation.ID)
			}
		}
		logger.Info("Collection page listed",
			logger.Int("page", page),
			logger.Int("pages", listing.Pagination.Pages),
			logger.Int("items", listing.Pagination.Items))

		if page >= listing.Pagination.Pages {
			return ids, nil
		}
		page++
		s.pause(ctx)
	}
}

func (s *Scraper) pause(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.delay):
	}
}
