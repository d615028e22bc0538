package cmd

import (
	"context"
	"time"

	"CrateFM/cache"
	"CrateFM/config"
	"CrateFM/core/catalog"
	"CrateFM/db"
	"CrateFM/logger"
	"CrateFM/repository"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local snapshot with the remote record store",
	Long: `Runs one drift-detection pass: adopts a valid snapshot, compares it
against the authoritative remote count, fetches only the missing delta
and persists a fresh snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

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

		snapshots := cache.NewSnapshotCache(cache.RedisClient, cfg.SnapshotKey, cfg.SnapshotVersion, cfg.SnapshotTTL)
		albumRepo := repository.NewMySQLAlbumRepository(db.DB)
		store := catalog.NewStore()
		syncer := catalog.NewSyncer(albumRepo, snapshots, store, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := syncer.Sync(ctx)
		if err != nil {
			return err
		}

		logger.Info("Sync complete",
			logger.Int("total", result.Total),
			logger.Int("fetched", result.Fetched),
			logger.Bool("fullRefetch", result.FullRefetch),
			logger.Bool("mismatch", result.Mismatch))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
