package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dramafeed/models"
	"dramafeed/services/calendar"
)

// ReleaseCalendarHandler serves the release-calendar endpoints backed by the
// background worker's snapshot.
type ReleaseCalendarHandler struct {
	Service *calendar.Service
}

// NewReleaseCalendarHandler creates a new ReleaseCalendarHandler.
func NewReleaseCalendarHandler(service *calendar.Service) *ReleaseCalendarHandler {
	return &ReleaseCalendarHandler{Service: service}
}

// GetCalendar returns the current selection. Before the first refresh lands it
// serves an empty selection rather than an error.
func (h *ReleaseCalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := h.Service.Get()
	if snap == nil {
		json.NewEncoder(w).Encode(models.ReleaseCalendarResponse{
			SelectedItems: []models.ReleaseCalendarItem{},
		})
		return
	}

	items := snap.Items
	if items == nil {
		items = []models.ReleaseCalendarItem{}
	}
	json.NewEncoder(w).Encode(models.ReleaseCalendarResponse{
		SelectedItems: items,
		Stats:         snap.Stats,
		RefreshedAt:   snap.RefreshedAt.Format(time.RFC3339),
	})
}

// GetStatus returns the background worker's status.
func (h *ReleaseCalendarHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetStatus())
}

// PostRefresh schedules an immediate refresh and returns without waiting.
func (h *ReleaseCalendarHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	h.Service.Refresh()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "refresh scheduled"})
}
