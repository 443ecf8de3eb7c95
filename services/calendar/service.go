package calendar

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"dramafeed/models"
)

// UpcomingSource supplies release-calendar candidates.
type UpcomingSource interface {
	UpcomingTitles(ctx context.Context) ([]models.ReleaseCalendarItem, error)
}

// Snapshot is the result of one completed refresh.
type Snapshot struct {
	Items       []models.ReleaseCalendarItem
	Stats       models.BucketStats
	RefreshedAt time.Time
}

// Status holds the current state of the calendar background worker.
type Status struct {
	Running         bool      `json:"running"`
	State           string    `json:"state"` // "idle", "refreshing", "stopped"
	LastRefreshAt   time.Time `json:"lastRefreshAt"`
	LastRefreshMs   int64     `json:"lastRefreshMs"`
	NextRefreshAt   time.Time `json:"nextRefreshAt"`
	RefreshInterval string    `json:"refreshInterval"`
	ItemsSelected   int       `json:"itemsSelected"`
	LastError       string    `json:"lastError,omitempty"`
}

// Service keeps a pre-computed release-calendar selection warm in the
// background so the HTTP handler only ever reads a snapshot.
type Service struct {
	mu      sync.RWMutex
	current *Snapshot

	source          UpcomingSource
	now             func() time.Time
	stopCh          chan struct{}
	refreshNow      chan struct{}
	refreshInterval time.Duration
	retryAttempts   uint
	retryDelay      time.Duration

	statusMu      sync.RWMutex
	running       bool
	state         string
	lastRefreshAt time.Time
	lastRefreshMs int64
	nextRefreshAt time.Time
	lastError     string
}

// New creates a calendar service over the given candidate source.
func New(source UpcomingSource) *Service {
	return &Service{
		source:        source,
		now:           time.Now,
		retryAttempts: 3,
		retryDelay:    2 * time.Second,
	}
}

// StartBackgroundRefresh begins async population on startup and periodic
// refresh thereafter.
func (s *Service) StartBackgroundRefresh(interval time.Duration) {
	s.refreshInterval = interval
	s.stopCh = make(chan struct{})
	s.refreshNow = make(chan struct{}, 1)

	s.statusMu.Lock()
	s.running = true
	s.state = "idle"
	s.statusMu.Unlock()

	go func() {
		log.Println("[calendar] initial population starting")
		s.doRefresh()
		log.Println("[calendar] initial population complete")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			s.statusMu.Lock()
			s.nextRefreshAt = s.now().Add(interval)
			s.statusMu.Unlock()

			select {
			case <-ticker.C:
				s.doRefresh()
			case <-s.refreshNow:
				log.Println("[calendar] manual refresh triggered")
				s.doRefresh()
				// Next auto-refresh should be a full interval away again.
				ticker.Reset(interval)
			case <-s.stopCh:
				log.Println("[calendar] background refresh stopped")
				s.statusMu.Lock()
				s.running = false
				s.state = "stopped"
				s.statusMu.Unlock()
				return
			}
		}
	}()
}

// Refresh triggers an immediate refresh. Non-blocking; coalesces if one is
// already pending.
func (s *Service) Refresh() {
	if s.refreshNow == nil {
		return
	}
	select {
	case s.refreshNow <- struct{}{}:
	default:
	}
}

// Stop gracefully stops the background refresh.
func (s *Service) Stop() {
	if s.stopCh != nil {
		close(s.stopCh)
	}
}

// Get returns the latest snapshot, or nil before the first refresh completes.
func (s *Service) Get() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// GetStatus returns the worker's current status.
func (s *Service) GetStatus() Status {
	s.statusMu.RLock()
	status := Status{
		Running:       s.running,
		State:         s.state,
		LastRefreshAt: s.lastRefreshAt,
		LastRefreshMs: s.lastRefreshMs,
		NextRefreshAt: s.nextRefreshAt,
		LastError:     s.lastError,
	}
	s.statusMu.RUnlock()

	if s.refreshInterval > 0 {
		if s.refreshInterval >= time.Hour {
			status.RefreshInterval = fmt.Sprintf("%.0fh", s.refreshInterval.Hours())
		} else {
			status.RefreshInterval = fmt.Sprintf("%.0fm", s.refreshInterval.Minutes())
		}
	}

	if snap := s.Get(); snap != nil {
		status.ItemsSelected = len(snap.Items)
	}
	return status
}

func (s *Service) doRefresh() {
	s.statusMu.Lock()
	s.state = "refreshing"
	s.statusMu.Unlock()

	start := s.now()
	err := s.refresh()

	s.statusMu.Lock()
	s.state = "idle"
	s.lastRefreshAt = s.now()
	s.lastRefreshMs = time.Since(start).Milliseconds()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.statusMu.Unlock()
}

// refresh pulls candidates (with retry, since upstream hiccups during a
// background pass are cheap to ride out) and rebuilds the selection. The
// previous snapshot is kept on failure.
func (s *Service) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var candidates []models.ReleaseCalendarItem
	err := retry.Do(
		func() error {
			var err error
			candidates, err = s.source.UpcomingTitles(ctx)
			return err
		},
		retry.Attempts(s.retryAttempts),
		retry.Delay(s.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[calendar] refresh failed: %v", err)
		return err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	selection := SelectUpcoming(candidates, today)

	s.mu.Lock()
	s.current = &Snapshot{
		Items:       selection.Items,
		Stats:       selection.Stats,
		RefreshedAt: now,
	}
	s.mu.Unlock()

	log.Printf("[calendar] refresh complete: %d candidates, %d selected", len(candidates), len(selection.Items))
	return nil
}
