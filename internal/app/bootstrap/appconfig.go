// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and request limits; everything specific to EstateHub
// lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: estatehub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration
	CSRFKey       string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Dashboards and background workers
	RefreshInterval         time.Duration
	SnapshotMaxAge          time.Duration
	ExpirySweepInterval     time.Duration
	MockFallback            bool
	AgentFallbackCommission float64
	AssignmentDefaultExpiry time.Duration

	// Tables and exports
	DefaultPerPage int
	ExportMaxRows  int64

	// Timeout overrides; zero keeps the default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutExport time.Duration
}
