package testutil

import (
	"context"
	"testing"

	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"go.uber.org/zap"
)

// SetupSQLiteEngine opens an in-memory SQLite store and an assignment
// Engine over it. Audit events are dropped. Both are closed on cleanup.
func SetupSQLiteEngine(t *testing.T) (*sqlitestore.Store, *assignment.Engine) {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, assignment.New(s, nil, zap.NewNop())
}
