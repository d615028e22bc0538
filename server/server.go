package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CrateFM/cache"
	"CrateFM/config"
	"CrateFM/core/catalog"
	"CrateFM/db"
	"CrateFM/logger"
	"CrateFM/repository"

	"github.com/gorilla/mux"
)

// Start wires the whole application and runs the HTTP server until a
// shutdown signal arrives.
func Start() {
	cfg := config.Load()

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Redis is required: it backs the snapshot cache.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	snapshots := cache.NewSnapshotCache(cache.RedisClient, cfg.SnapshotKey, cfg.SnapshotVersion, cfg.SnapshotTTL)

	// MySQL is optional at startup: without it the app runs on the
	// snapshot alone (offline mode).
	var (
		albumRepo   *repository.MySQLAlbumRepository
		historyRepo *repository.HistoryRepository
	)
	if err := db.ConnectDB(cfg); err != nil {
		logger.Warn("Record store unreachable, starting offline", logger.ErrorField(err))
	} else {
		defer db.DB.Close()
		if err := db.InitDB(); err != nil {
			logger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		albumRepo = repository.NewMySQLAlbumRepository(db.DB)

		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Warn("GORM connection failed, history disabled", logger.ErrorField(err))
		} else {
			defer db.CloseGormDB()
			historyRepo = repository.NewHistoryRepository(db.GormDB)
		}
	}

	store := catalog.NewStore()
	views := catalog.NewMaterializer(catalog.NewSegmenter(), catalog.NewKeywordCategorizer(), cfg.ViewBatchSize)
	hub := NewEventHub()

	var (
		remoteReader catalog.RemoteStore
		remoteWriter catalog.RemoteWriter
		historySink  catalog.HistorySink
	)
	if albumRepo != nil {
		remoteReader = albumRepo
		remoteWriter = albumRepo
	}
	if historyRepo != nil {
		historySink = historyRepo
	}

	syncer := catalog.NewSyncer(remoteReader, snapshots, store, hub)
	manager := catalog.NewManager(store, views, syncer, snapshots, remoteWriter, historySink)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Startup reconciliation. Remote down with no cache leaves an empty
	// collection and a notice on the event hub; the server still comes up.
	if remoteReader != nil {
		if _, err := manager.Sync(rootCtx); err != nil {
			logger.Warn("Startup sync failed, offline empty-collection mode", logger.ErrorField(err))
		}
	} else if snapshots.IsValid(rootCtx) {
		if snap, err := snapshots.Load(rootCtx); err == nil && snap != nil {
			store.Replace(snap.Albums)
			logger.Info("Loaded snapshot in offline mode", logger.Int("albums", len(snap.Albums)))
		}
	}

	// Drop-folder importer, when configured.
	if cfg.DropDir != "" {
		watcher := catalog.NewDropWatcher(cfg.DropDir, manager)
		go func() {
			if err := watcher.Run(rootCtx); err != nil && rootCtx.Err() == nil {
				logger.Error("Drop folder watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	apiHandler := NewAPIHandler(manager, historyRepo)

	router := mux.NewRouter()

	// CORS for the UI during development.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/albums", apiHandler.GetAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", apiHandler.IngestHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/views/artists", apiHandler.GetArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/views/tracks", apiHandler.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/views/roles", apiHandler.GetRolesHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/views/invalidate", apiHandler.InvalidateViewsHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sync", apiHandler.SyncHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/history", apiHandler.HistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/events", hub.HandleWS)
	router.HandleFunc("/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	httpServer.Handler = router

	go func() {
		logger.Info("HTTP server listening", logger.String("addr", cfg.ServerAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", logger.ErrorField(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", logger.ErrorField(err))
	}
}
