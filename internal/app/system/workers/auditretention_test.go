package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePruner) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestPrune_UsesRetentionCutoff(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakePruner{n: 3}
	w := NewAuditRetention(p, zap.New(core), time.Hour, 24*time.Hour)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	w.prune()

	if len(p.cutoffs) != 1 {
		t.Fatalf("DeleteBefore calls = %d, want 1", len(p.cutoffs))
	}
	if want := fixed.Add(-24 * time.Hour); !p.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", p.cutoffs[0], want)
	}
	if logs.FilterMessage("pruned audit events").Len() != 1 {
		t.Error("expected a prune log entry")
	}
}

func TestPrune_NothingToDeleteIsQuiet(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewAuditRetention(&fakePruner{}, zap.New(core), time.Hour, time.Hour)

	w.prune()

	if logs.Len() != 0 {
		t.Errorf("expected no logs, got %d", logs.Len())
	}
}

func TestPrune_LogsError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewAuditRetention(&fakePruner{err: errors.New("boom")}, zap.New(core), time.Hour, time.Hour)

	w.prune()

	if logs.FilterMessage("failed to prune audit events").Len() != 1 {
		t.Error("expected an error log entry")
	}
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := &fakePruner{}
	w := NewAuditRetention(p, zap.NewNop(), 5*time.Millisecond, time.Hour)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if p.calls() == 0 {
		t.Error("worker never pruned")
	}
}
