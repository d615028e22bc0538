package cmd

import (
	"context"
	"fmt"
	"time"

	"CrateFM/cache"
	"CrateFM/config"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent snapshot cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current snapshot's version, age and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cache.ConnectRedis(cfg); err != nil {
			return err
		}
		defer cache.CloseRedis()

		snapshots := cache.NewSnapshotCache(cache.RedisClient, cfg.SnapshotKey, cfg.SnapshotVersion, cfg.SnapshotTTL)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := snapshots.Load(ctx)
		if err != nil {
			return err
		}
		if snap == nil {
			fmt.Println("no snapshot")
			return nil
		}

		fmt.Printf("version:   %s (expected %s)\n", snap.Version, cfg.SnapshotVersion)
		fmt.Printf("created:   %s (age %s)\n", snap.TimestampISO, time.Since(snap.Timestamp()).Round(time.Second))
		fmt.Printf("albums:    %d\n", len(snap.Albums))
		fmt.Printf("history:   %d entries\n", len(snap.History))
		fmt.Printf("valid:     %v\n", snapshots.IsValid(ctx))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the snapshot; the next start performs a full fetch",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cache.ConnectRedis(cfg); err != nil {
			return err
		}
		defer cache.CloseRedis()

		snapshots := cache.NewSnapshotCache(cache.RedisClient, cfg.SnapshotKey, cfg.SnapshotVersion, cfg.SnapshotTTL)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := snapshots.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("snapshot cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
