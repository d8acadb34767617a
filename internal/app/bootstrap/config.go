// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/assistcenter/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the assistance center
// service. These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, audit_log_admin, etc.
//   - Environment variables: ASSISTCENTER_MONGO_URI, ASSISTCENTER_AUDIT_LOG_ADMIN, etc.
//   - Command-line flags: --mongo_uri, --audit_log_admin, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "assistcenter", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Catalog event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_assignment", Default: "all", Desc: "Assignment event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},
	{Name: "audit_prune_interval", Default: "1h", Desc: "How often expired audit events are removed"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ASSISTCENTER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ASSISTCENTER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Audit logging
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogAssignment: appValues.String("audit_log_assignment"),
		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditPruneInterval: appValues.Duration("audit_prune_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before attempting to connect, and the audit
// modes must be one of the values auditlog understands.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}

	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	for key, mode := range map[string]string{
		"audit_log_admin":      appCfg.AuditLogAdmin,
		"audit_log_assignment": appCfg.AuditLogAssignment,
	} {
		if !validAuditMode(mode) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, mode)
		}
	}

	if appCfg.AuditRetention > 0 && appCfg.AuditPruneInterval <= 0 {
		return fmt.Errorf("audit_prune_interval must be positive when audit_retention is set")
	}

	return nil
}

func validAuditMode(mode string) bool {
	switch mode {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		return true
	}
	return false
}
