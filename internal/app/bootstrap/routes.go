// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/assistcenter/internal/app/features/auditlog"
	centersfeature "github.com/dalemusser/assistcenter/internal/app/features/centers"
	errorsfeature "github.com/dalemusser/assistcenter/internal/app/features/errors"
	healthfeature "github.com/dalemusser/assistcenter/internal/app/features/health"
	productsfeature "github.com/dalemusser/assistcenter/internal/app/features/products"
	stafffeature "github.com/dalemusser/assistcenter/internal/app/features/staff"
	techniciansfeature "github.com/dalemusser/assistcenter/internal/app/features/technicians"
	"github.com/dalemusser/assistcenter/internal/app/store/assignstore"
	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The assignment engine runs on the
// MongoDB store and reports every change to the audit logger.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	events := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(events, logger, auditlog.Config{
		Admin:      appCfg.AuditLogAdmin,
		Assignment: appCfg.AuditLogAssignment,
	})

	engine := assignment.New(assignstore.New(deps.MongoDatabase, logger), auditLogger, logger)

	return newRouter(deps, engine, auditLogger, events, logger), nil
}

// newRouter mounts every feature. It is split from BuildHandler so tests
// can supply their own engine.
func newRouter(deps DBDeps, engine *assignment.Engine, auditLogger *auditlog.Logger, events *audit.Store, logger *zap.Logger) chi.Router {
	db := deps.MongoDatabase

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Request metadata (IP, user agent, X-Actor) for audit events.
	r.Use(auditlog.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.RenderNotFound(w, "No such route.")
	})

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Catalog and assignment
	r.Mount("/centers", centersfeature.Routes(centersfeature.NewHandler(db, engine, auditLogger, errLog, logger)))
	r.Mount("/technicians", techniciansfeature.Routes(techniciansfeature.NewHandler(db, engine, auditLogger, errLog, logger)))
	r.Mount("/staff", stafffeature.Routes(stafffeature.NewHandler(db, engine, auditLogger, errLog, logger)))
	r.Mount("/products", productsfeature.Routes(productsfeature.NewHandler(db, engine, auditLogger, errLog, logger)))

	// Audit trail
	r.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(events, errLog, logger)))

	return r
}
