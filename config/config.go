package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// SourceConfig describes one upstream provider API.
type SourceConfig struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	API      string `json:"api"` // base URL of an Apple-CMS style endpoint
	Disabled bool   `json:"disabled"`
	Type     string `json:"type"` // content domain, e.g. "shortdrama"
}

// ServerSettings holds process-level settings.
type ServerSettings struct {
	ListenAddr string `json:"listenAddr"`
	CacheDir   string `json:"cacheDir"`
	LogFile    string `json:"logFile,omitempty"`
}

// CalendarSettings controls the release-calendar background worker.
type CalendarSettings struct {
	RefreshIntervalMinutes int `json:"refreshIntervalMinutes"`
}

// Settings is the full on-disk configuration.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Sources  []SourceConfig   `json:"sources"`
	Calendar CalendarSettings `json:"calendar"`
}

// EnabledSources returns the enabled sources matching the given content type,
// stable-sorted by key. Pinning the order here makes the aggregation pipeline's
// last-write-wins dedup reproducible across runs.
func (s *Settings) EnabledSources(sourceType string) []SourceConfig {
	var out []SourceConfig
	for _, src := range s.Sources {
		if src.Disabled || src.Type != sourceType {
			continue
		}
		if strings.TrimSpace(src.API) == "" {
			continue
		}
		out = append(out, src)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Manager loads and saves the settings file. A missing file is not an error;
// defaults are returned instead so a fresh install starts without setup.
type Manager struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewManager creates a settings manager backed by the given filesystem.
func NewManager(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path}
}

// Load reads the settings file, applying defaults for missing fields.
func (m *Manager) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := &Settings{}
	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(settings)
			return settings, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	applyDefaults(settings)
	return settings, nil
}

// Save writes the settings file via a temp file and rename.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(m.path)
	if dir != "." {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func applyDefaults(s *Settings) {
	if s.Server.ListenAddr == "" {
		s.Server.ListenAddr = ":8090"
	}
	if s.Server.CacheDir == "" {
		s.Server.CacheDir = "cache"
	}
	if s.Calendar.RefreshIntervalMinutes <= 0 {
		s.Calendar.RefreshIntervalMinutes = 360
	}
}
