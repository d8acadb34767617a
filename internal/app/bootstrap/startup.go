// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/assistcenter/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// auditRetention is started in Startup and stopped in Shutdown.
var auditRetention *workers.AuditRetention

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long),
			zap.Duration("batch", cur.Batch))
	}

	if appCfg.AuditRetention > 0 {
		auditRetention = workers.NewAuditRetention(audit.New(deps.MongoDatabase), logger,
			appCfg.AuditPruneInterval, appCfg.AuditRetention)
		auditRetention.Start()
	}
	return nil
}
