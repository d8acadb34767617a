// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an audit trail feature handler over the audit
// event store.
func NewHandler(events *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
	}
}
