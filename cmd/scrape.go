package cmd

import (
	"context"
	"errors"

	"CrateFM/cache"
	"CrateFM/config"
	"CrateFM/core/catalog"
	"CrateFM/core/discogs"
	"CrateFM/db"
	"CrateFM/logger"
	"CrateFM/repository"
	"CrateFM/storage"

	"github.com/spf13/cobra"
)

var scrapeSkipCovers bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the external catalog collection into the record store",
	Long: `Walks the configured user's collection on the external catalog
service, fetches release details and ingests them through duplicate
resolution. Covers are mirrored to MinIO unless --skip-covers is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.CatalogUsername == "" {
			return errors.New("CATALOG_USERNAME is required for scraping")
		}

		if err := cache.ConnectRedis(cfg); err != nil {
			return err
		}
		defer cache.CloseRedis()

		if err := db.ConnectDB(cfg); err != nil {
			return err
		}
		defer db.DB.Close()
		if err := db.InitDB(); err != nil {
			return err
		}

		var historySink catalog.HistorySink
		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Warn("GORM connection failed, history disabled", logger.ErrorField(err))
		} else {
			defer db.CloseGormDB()
			historySink = repository.NewHistoryRepository(db.GormDB)
		}

		var covers discogs.CoverStore
		if !scrapeSkipCovers {
			archive, err := storage.NewCoverArchive(cfg)
			if err != nil {
				logger.Warn("Cover archive unavailable, skipping mirroring", logger.ErrorField(err))
			} else {
				covers = archive
			}
		}

		snapshots := cache.NewSnapshotCache(cache.RedisClient, cfg.SnapshotKey, cfg.SnapshotVersion, cfg.SnapshotTTL)
		albumRepo := repository.NewMySQLAlbumRepository(db.DB)
		store := catalog.NewStore()
		views := catalog.NewMaterializer(catalog.NewSegmenter(), catalog.NewKeywordCategorizer(), cfg.ViewBatchSize)
		syncer := catalog.NewSyncer(albumRepo, snapshots, store, nil)
		manager := catalog.NewManager(store, views, syncer, snapshots, albumRepo, historySink)

		ctx := context.Background()

		// Load the current working set first so duplicate resolution sees
		// the existing collection.
		if _, err := manager.Sync(ctx); err != nil {
			return err
		}

		client := discogs.NewClient(cfg.CatalogBaseURL, cfg.CatalogToken)
		scraper := discogs.NewScraper(client, manager, covers, cfg.CatalogUsername, cfg.CatalogDelay)

		result, err := scraper.Run(ctx)
		if err != nil {
			return err
		}

		logger.Info("Scrape complete",
			logger.Int("added", result.Added),
			logger.Int("replaced", result.Replaced),
			logger.Int("duplicates", result.Duplicates),
			logger.Int("failures", result.Failures))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeSkipCovers, "skip-covers", false, "do not mirror cover images to MinIO")
	rootCmd.AddCommand(scrapeCmd)
}
