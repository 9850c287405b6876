// Package timeouts holds the deadline tiers handlers attach to database
// work. Every store call runs under one of five tiers so a slow query
// fails fast instead of pinning a request goroutine.
//
// Tier guide:
//   - Ping: connectivity checks (health endpoint, startup ping)
//   - Short: single-document reads
//   - Medium: list queries and simple writes
//   - Long: writes that touch several collections
//   - Batch: cascade deletes, recount sweeps
//
// Tiers default to the values below and can be overridden once at
// startup with Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config holds one duration per tier. Zero values mean "leave as is".
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func read(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(current)
}

// Ping returns the connectivity-check tier.
func Ping() time.Duration { return read(func(c Config) time.Duration { return c.Ping }) }

// Short returns the single-document read tier.
func Short() time.Duration { return read(func(c Config) time.Duration { return c.Short }) }

// Medium returns the list-query and simple-write tier.
func Medium() time.Duration { return read(func(c Config) time.Duration { return c.Medium }) }

// Long returns the multi-collection write tier.
func Long() time.Duration { return read(func(c Config) time.Duration { return c.Long }) }

// Batch returns the bulk-operation tier.
func Batch() time.Duration { return read(func(c Config) time.Duration { return c.Batch }) }

// Configure overrides tiers with the positive values in cfg. Call during
// startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		current.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		current.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		current.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		current.Long = cfg.Long
	}
	if cfg.Batch > 0 {
		current.Batch = cfg.Batch
	}
}

// Reset restores the default tiers. Tests use this to undo Configure.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv overrides tiers from TIMEOUT_PING, TIMEOUT_SHORT,
// TIMEOUT_MEDIUM, TIMEOUT_LONG and TIMEOUT_BATCH (Go duration syntax,
// e.g. "500ms", "2m"). Unset or unparseable values are skipped. Returns
// how many tiers were overridden.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	n := 0
	for _, v := range []struct {
		env string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &current.Ping},
		{"TIMEOUT_SHORT", &current.Short},
		{"TIMEOUT_MEDIUM", &current.Medium},
		{"TIMEOUT_LONG", &current.Long},
		{"TIMEOUT_BATCH", &current.Batch},
	} {
		raw := os.Getenv(v.env)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			n++
		}
	}
	return n
}

// Current returns a snapshot of the active tiers, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout wraps context.WithTimeout and logs a warning naming the
// operation when the deadline was actually hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "group cascade delete")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
