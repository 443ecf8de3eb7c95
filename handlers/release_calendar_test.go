package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramafeed/handlers"
	"dramafeed/models"
	"dramafeed/services/calendar"
)

type emptyUpcomingSource struct{}

func (emptyUpcomingSource) UpcomingTitles(_ context.Context) ([]models.ReleaseCalendarItem, error) {
	return nil, nil
}

func TestGetCalendar_EmptyBeforeFirstRefresh(t *testing.T) {
	svc := calendar.New(emptyUpcomingSource{})
	h := handlers.NewReleaseCalendarHandler(svc)

	rec := httptest.NewRecorder()
	h.GetCalendar(rec, httptest.NewRequest(http.MethodGet, "/api/release-calendar", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.ReleaseCalendarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotNil(t, got.SelectedItems)
	assert.Empty(t, got.SelectedItems)
}

func TestGetStatus_ServesWorkerStatus(t *testing.T) {
	svc := calendar.New(emptyUpcomingSource{})
	h := handlers.NewReleaseCalendarHandler(svc)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/release-calendar/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var status calendar.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
}

func TestPostRefresh_Accepted(t *testing.T) {
	svc := calendar.New(emptyUpcomingSource{})
	h := handlers.NewReleaseCalendarHandler(svc)

	rec := httptest.NewRecorder()
	h.PostRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/release-calendar/refresh", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "refresh scheduled", body["status"])
}
