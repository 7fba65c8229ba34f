// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	dashboardfeature "github.com/homeandown/estatehub/internal/app/features/dashboard"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	"github.com/homeandown/estatehub/internal/app/store/audit"
	"github.com/homeandown/estatehub/internal/app/store/gateway"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/app/system/ratelimit"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/refresh"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/app/system/workers"
	"go.uber.org/zap"
)

// Services are the long-lived components shared by handlers and workers.
type Services struct {
	Metrics  *telemetry.Metrics
	Audit    *auditlog.Logger
	Sessions *auth.SessionManager
	Gateway  gateway.Gateway
	Admin    *refresh.Coordinator[metricsstore.AdminDashboard]
	Agent    *refresh.Coordinator[metricsstore.AgentDashboard]
	Hub      *realtime.Hub
	Limiter  *ratelimit.LoginLimiter
	Poller   *workers.RefreshPoller
	Expiry   *workers.AssignmentExpiry

	log *zap.Logger
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the shared services and starts the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services == nil {
		return fmt.Errorf("startup: services not allocated")
	}
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Export: appCfg.TimeoutExport,
	})

	s, err := newServices(coreCfg, appCfg, deps, logger)
	if err != nil {
		return err
	}
	*deps.Services = *s

	deps.Services.Poller.Start()
	deps.Services.Expiry.Start()
	return nil
}

func newServices(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*Services, error) {
	db := deps.EstateHubMongoDatabase
	s := &Services{log: logger}

	s.Metrics = telemetry.New()
	s.Audit = auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sm, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// LoadSessionUser re-reads the user on each request so role and status
	// changes take effect immediately.
	sm.SetUserFetcher(userstore.NewFetcher(db))
	s.Sessions = sm

	s.Gateway = gateway.New(db)
	s.Admin = refresh.New("admin", dashboardfeature.AdminLoader(s.Gateway, metricsstore.Options{
		MockFallback: appCfg.MockFallback,
		Observe:      s.Metrics.Degraded,
	}, logger), logger, s.Metrics)
	s.Agent = refresh.New("agent", dashboardfeature.AgentLoader(s.Gateway, metricsstore.AgentOptions{
		FallbackCommission: appCfg.AgentFallbackCommission,
	}, logger), logger, s.Metrics)

	s.Hub = realtime.NewHub(logger, s.Metrics, s.invalidate)
	s.Limiter = ratelimit.NewLoginLimiter()

	s.Poller = workers.NewRefreshPoller(map[string]workers.RefreshFunc{
		"admin":  s.refreshAdmin,
		"agents": s.refreshAgents,
	}, logger, appCfg.RefreshInterval)

	s.Expiry = workers.NewAssignmentExpiry(assignmentstore.New(db, logger), logger, s.Metrics,
		appCfg.ExpirySweepInterval, func(ctx context.Context, n int64) {
			s.Hub.Publish(ctx, realtime.Event{Table: "agent_inquiry_assignments", Event: realtime.Update})
		})

	return s, nil
}

// invalidate reloads the dashboards a published event can affect. It runs
// detached from the request that published the event.
func (s *Services) invalidate(ctx context.Context, ev realtime.Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
		defer cancel()

		if _, err := s.Admin.Invalidate(ctx, dashboardfeature.AdminScope); err != nil {
			s.log.Warn("admin dashboard invalidate failed", zap.String("table", ev.Table), zap.Error(err))
		}
		if ev.AgentID == "" {
			return
		}
		scope := dashboardfeature.AgentScopeHex(ev.AgentID)
		if _, err := s.Agent.Invalidate(ctx, scope); err != nil {
			s.log.Warn("agent dashboard invalidate failed", zap.String("scope", scope), zap.Error(err))
		}
	}()
}

func (s *Services) refreshAdmin(ctx context.Context) error {
	_, err := s.Admin.Refresh(ctx, dashboardfeature.AdminScope)
	return err
}

// refreshAgents reloads every agent dashboard that has been viewed since
// startup.
func (s *Services) refreshAgents(ctx context.Context) error {
	var firstErr error
	for _, scope := range s.Agent.Scopes() {
		if _, err := s.Agent.Refresh(ctx, scope); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", scope, err)
		}
	}
	return firstErr
}

// stop halts the workers and the login limiter's sweeper.
func (s *Services) stop() {
	if s.Poller != nil {
		s.Poller.Stop()
	}
	if s.Expiry != nil {
		s.Expiry.Stop()
	}
	if s.Limiter != nil {
		s.Limiter.Stop()
	}
}
