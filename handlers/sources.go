package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"dramafeed/config"
)

// SourcesHandler serves the admin CRUD surface for upstream source entries.
type SourcesHandler struct {
	Config *config.Manager
}

// NewSourcesHandler creates a new SourcesHandler.
func NewSourcesHandler(cfg *config.Manager) *SourcesHandler {
	return &SourcesHandler{Config: cfg}
}

// GetSources lists all configured sources, disabled ones included.
func (h *SourcesHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Config.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load settings failed")
		return
	}
	sources := settings.Sources
	if sources == nil {
		sources = []config.SourceConfig{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sources)
}

// UpsertSource creates or replaces a source entry, keyed by its key field.
func (h *SourcesHandler) UpsertSource(w http.ResponseWriter, r *http.Request) {
	var src config.SourceConfig
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	src.Key = strings.TrimSpace(src.Key)
	src.API = strings.TrimSpace(src.API)
	if src.Key == "" || src.API == "" {
		writeError(w, http.StatusBadRequest, "key and api are required")
		return
	}
	if src.Type == "" {
		src.Type = "shortdrama"
	}

	settings, err := h.Config.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load settings failed")
		return
	}

	replaced := false
	for i := range settings.Sources {
		if settings.Sources[i].Key == src.Key {
			settings.Sources[i] = src
			replaced = true
			break
		}
	}
	if !replaced {
		settings.Sources = append(settings.Sources, src)
	}

	if err := h.Config.Save(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "save settings failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(src)
}

// DeleteSource removes a source entry by key.
func (h *SourcesHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(mux.Vars(r)["key"])
	if key == "" {
		writeError(w, http.StatusBadRequest, "source key is required")
		return
	}

	settings, err := h.Config.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load settings failed")
		return
	}

	kept := settings.Sources[:0]
	found := false
	for _, src := range settings.Sources {
		if src.Key == key {
			found = true
			continue
		}
		kept = append(kept, src)
	}
	if !found {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	settings.Sources = kept

	if err := h.Config.Save(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "save settings failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": key})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
