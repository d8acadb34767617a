// internal/app/features/centers/handler.go
package centers

import (
	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the centers feature.
// Catalog reads and writes go straight to Mongo; anything touching a
// technician's center goes through the assignment Engine.
type Handler struct {
	DB     *mongo.Database
	Engine *assignment.Engine
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a centers Handler.
func NewHandler(db *mongo.Database, engine *assignment.Engine, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Engine: engine,
		Audit:  audit,
		ErrLog: errLog,
		Log:    logger,
	}
}
