// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EstateHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ESTATEHUB_MONGO_URI, ESTATEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "estate_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "estatehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123456789AB", Desc: "CSRF token key, 32 bytes or more"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Dashboards and background work
	{Name: "refresh_interval", Default: "30s", Desc: "How often dashboards are reloaded in the background"},
	{Name: "snapshot_max_age", Default: "30s", Desc: "Dashboard snapshots younger than this are served without a reload"},
	{Name: "expiry_sweep_interval", Default: "5m", Desc: "How often overdue agent assignments are expired"},
	{Name: "mock_fallback", Default: true, Desc: "Show sample dashboard figures when the database is unreachable"},
	{Name: "agent_fallback_commission", Default: 15000, Desc: "Commission shown to agents with no earnings records"},
	{Name: "assignment_default_expiry", Default: "24h", Desc: "Response window for an agent assignment when none is given"},

	// Tables and exports
	{Name: "default_per_page", Default: 10, Desc: "Rows per table page when the request does not say"},
	{Name: "export_max_rows", Default: 50000, Desc: "Upper bound on rows written by one export"},

	// Timeouts (0 keeps the built-in default)
	{Name: "timeout_short", Default: "0s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "0s", Desc: "Timeout for list queries and multi-step writes"},
	{Name: "timeout_long", Default: "0s", Desc: "Timeout for dashboard loads"},
	{Name: "timeout_export", Default: "0s", Desc: "Timeout for full-table export reads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ESTATEHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ESTATEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		RefreshInterval:         appValues.Duration("refresh_interval", 30*time.Second),
		SnapshotMaxAge:          appValues.Duration("snapshot_max_age", 30*time.Second),
		ExpirySweepInterval:     appValues.Duration("expiry_sweep_interval", 5*time.Minute),
		MockFallback:            appValues.Bool("mock_fallback"),
		AgentFallbackCommission: float64(appValues.Int("agent_fallback_commission")),
		AssignmentDefaultExpiry: appValues.Duration("assignment_default_expiry", 24*time.Hour),

		DefaultPerPage: appValues.Int("default_per_page"),
		ExportMaxRows:  int64(appValues.Int("export_max_rows")),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
		TimeoutExport: appValues.Duration("timeout_export", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// EstateHub checks the MongoDB URI format before attempting to connect,
// and rejects values the session, CSRF and table layers cannot work with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters")
	}
	if len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 characters")
	}
	if appCfg.DefaultPerPage <= 0 {
		return fmt.Errorf("default_per_page must be positive, got %d", appCfg.DefaultPerPage)
	}
	if appCfg.RefreshInterval < time.Second {
		return fmt.Errorf("refresh_interval must be at least 1s, got %s", appCfg.RefreshInterval)
	}
	if appCfg.ExpirySweepInterval < time.Second {
		return fmt.Errorf("expiry_sweep_interval must be at least 1s, got %s", appCfg.ExpirySweepInterval)
	}
	if appCfg.AssignmentDefaultExpiry < time.Hour {
		return fmt.Errorf("assignment_default_expiry must be at least 1h, got %s", appCfg.AssignmentDefaultExpiry)
	}
	if coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
