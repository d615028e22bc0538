package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"CrateFM/core/catalog"
	"CrateFM/logger"
	"CrateFM/model"
	"CrateFM/repository"
)

// APIHandler serves the catalog over HTTP. Rendering stays with the UI;
// everything here is JSON.
type APIHandler struct {
	manager *catalog.Manager
	history *repository.HistoryRepository // nil when running cache-only
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(manager *catalog.Manager, history *repository.HistoryRepository) *APIHandler {
	return &APIHandler{manager: manager, history: history}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Response encode failed", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// GetAlbumsHandler returns the working set.
func (h *APIHandler) GetAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums := h.manager.WorkingSet()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(albums),
		"albums": albums,
	})
}

// GetArtistsHandler returns the derived artist view.
func (h *APIHandler) GetArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.manager.Artists(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "artist view unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(artists),
		"artists": artists,
	})
}

// GetTracksHandler returns the derived track view.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.manager.Tracks(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "track view unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(tracks),
		"tracks": tracks,
	})
}

// GetRolesHandler returns the derived role view.
func (h *APIHandler) GetRolesHandler(w http.ResponseWriter, r *http.Request) {
	roles, err := h.manager.Roles(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "role view unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(roles),
		"roles": roles,
	})
}

// IngestHandler accepts one candidate record and reports the resolver's
// verdict.
func (h *APIHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	var candidate model.AlbumRecord
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate payload")
		return
	}
	if candidate.ID == 0 || candidate.Title == "" {
		writeError(w, http.StatusBadRequest, "candidate needs id and title")
		return
	}

	result := h.manager.Ingest(r.Context(), &candidate)
	writeJSON(w, http.StatusOK, result)
}

// InvalidateViewsHandler drops the derived-view memos.
func (h *APIHandler) InvalidateViewsHandler(w http.ResponseWriter, r *http.Request) {
	h.manager.InvalidateDerivedViews()
	writeJSON(w, http.StatusOK, map[string]bool{"invalidated": true})
}

// SyncHandler runs one reconciliation pass. A run already in flight is
// reported, not duplicated.
func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.Sync(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrRemoteUnavailable) {
			// Offline, empty-collection mode; the UI shows a notice.
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"offline": true,
				"result":  result,
			})
			return
		}
		logger.Error("Sync failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HistoryHandler returns recent scrape-run provenance.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"entries": []model.HistoryEntry{}})
		return
	}

	n := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			n = parsed
		}
	}

	entries, err := h.history.Recent(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// HealthHandler is a liveness probe.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
