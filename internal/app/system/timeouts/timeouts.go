// Package timeouts provides the deadlines handlers put on database work.
//
// Handlers wrap each store or engine call in context.WithTimeout using one
// of these values. They start at the defaults below and can be overridden
// once at startup with Configure or ConfigureFromEnv.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads and lookups
//   - Medium: list queries, availability listings, simple creates/updates
//   - Long: assignment transactions and guarded deletes
//   - Batch: bulk maintenance such as audit retention pruning
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// EnvPrefix is prepended to PING, SHORT, MEDIUM, LONG and BATCH by
// ConfigureFromEnv.
const EnvPrefix = "ASSISTCENTER_TIMEOUT_"

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for assignment transactions, which may be
// retried by the driver on transient write conflicts.
func Long() time.Duration { return get(&long) }

// Batch returns the timeout for bulk maintenance such as pruning old
// audit events.
func Batch() time.Duration { return get(&batch) }

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure sets custom timeout values. Zero values in the config are ignored,
// keeping the current (or default) values. Call it during startup before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range []struct {
		dst *time.Duration
		v   time.Duration
	}{{&ping, cfg.Ping}, {&short, cfg.Short}, {&medium, cfg.Medium}, {&long, cfg.Long}, {&batch, cfg.Batch}} {
		if f.v > 0 {
			*f.dst = f.v
		}
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	batch = DefaultBatch
}

// ConfigureFromEnv reads ASSISTCENTER_TIMEOUT_PING, _SHORT, _MEDIUM, _LONG
// and _BATCH as Go durations ("500ms", "2s", "1m"). Unset, invalid or
// non-positive values are ignored.
//
// Returns the number of timeouts successfully configured from environment.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0

	for _, f := range []struct {
		name string
		dst  *time.Duration
	}{{"PING", &ping}, {"SHORT", &short}, {"MEDIUM", &medium}, {"LONG", &long}, {"BATCH", &batch}} {
		v := os.Getenv(EnvPrefix + f.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.dst = d
			configured++
		}
	}
	return configured
}

// Current returns the current timeout configuration as a Config struct.
// Useful for logging or debugging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:   ping,
		Short:  short,
		Medium: medium,
		Long:   long,
		Batch:  batch,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign technician")
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
