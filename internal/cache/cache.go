package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"gestao-report/internal/config"

	"go.uber.org/zap"
)

// DefaultFreshness is how long an on-disk artifact stays valid.
const DefaultFreshness = 24 * time.Hour

// Dir holds one JSON artifact per resource type under a single directory.
// A disabled Dir answers every Load with a miss and drops every Save; the
// enabled state is fixed at construction, never read from the environment.
type Dir struct {
	path      string
	enabled   bool
	freshness time.Duration
	logger    *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) *Dir {
	return &Dir{
		path:      cfg.CacheDir,
		enabled:   cfg.CacheActive(),
		freshness: DefaultFreshness,
		logger:    logger.Named("cache"),
	}
}

// Load reads the artifact for name into v. It reports false on any miss:
// cache disabled, artifact absent, stale, or unreadable.
func (d *Dir) Load(name string, v any) bool {
	if !d.enabled {
		return false
	}

	file := filepath.Join(d.path, name+".json")
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > d.freshness {
		d.logger.Debug("cache artifact stale", zap.String("resource", name))
		return false
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		d.logger.Warn("discarding unreadable cache artifact",
			zap.String("resource", name),
			zap.Error(err),
		)
		return false
	}

	d.logger.Info("cache hit", zap.String("resource", name))
	return true
}

// Save persists v as the artifact for name. Failures are logged, never
// propagated; the cache is an optimization, not a store of record.
func (d *Dir) Save(name string, v any) {
	if !d.enabled {
		return
	}

	if err := os.MkdirAll(d.path, 0o755); err != nil {
		d.logger.Warn("creating cache dir", zap.Error(err))
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		d.logger.Warn("encoding cache artifact",
			zap.String("resource", name),
			zap.Error(err),
		)
		return
	}

	file := filepath.Join(d.path, name+".json")
	if err := os.WriteFile(file, b, 0o644); err != nil {
		d.logger.Warn("writing cache artifact",
			zap.String("resource", name),
			zap.Error(err),
		)
	}
}
