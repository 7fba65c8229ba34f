// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	approvalsfeature "github.com/homeandown/estatehub/internal/app/features/approvals"
	assignmentsfeature "github.com/homeandown/estatehub/internal/app/features/assignments"
	auditlogfeature "github.com/homeandown/estatehub/internal/app/features/auditlog"
	dashboardfeature "github.com/homeandown/estatehub/internal/app/features/dashboard"
	errorsfeature "github.com/homeandown/estatehub/internal/app/features/errors"
	formsfeature "github.com/homeandown/estatehub/internal/app/features/forms"
	healthfeature "github.com/homeandown/estatehub/internal/app/features/health"
	loginfeature "github.com/homeandown/estatehub/internal/app/features/login"
	notificationsfeature "github.com/homeandown/estatehub/internal/app/features/notifications"
	tablesfeature "github.com/homeandown/estatehub/internal/app/features/tables"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	recordstore "github.com/homeandown/estatehub/internal/app/store/records"
	sellerstore "github.com/homeandown/estatehub/internal/app/store/sellers"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed, so deps.Services is populated.
//
// Every feature writes through the realtime hub: a successful change is
// pushed to connected browsers and invalidates the affected dashboards.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	s := deps.Services
	if s == nil || s.Sessions == nil {
		return nil, fmt.Errorf("build handler: startup did not run")
	}
	db := deps.EstateHubMongoDatabase
	sm := s.Sessions
	publish := s.Hub.Publish

	errLog := errorsfeature.NewErrorLogger(logger)
	secure := coreCfg.Env == "prod"

	r := chi.NewRouter()
	r.Use(errLog.Recoverer)

	// Operational endpoints sit outside the session and CSRF layers.
	healthHandler := healthfeature.NewHandler(deps.EstateHubMongoClient, s.Hub.Clients, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", s.Metrics.Handler())

	r.Group(func(app chi.Router) {
		// Global auth middleware: loads SessionUser into context if logged in.
		app.Use(sm.LoadSessionUser)
		if !secure {
			app.Use(plaintextHTTP)
		}
		app.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
		))

		app.Get("/ws", s.Hub.ServeWS)

		// Authentication
		loginHandler := loginfeature.NewHandler(db, sm, s.Audit, s.Limiter, errLog, logger)
		loginfeature.MountRoutes(app, loginHandler)

		// Error endpoints
		errorsHandler := errorsfeature.NewHandler()
		app.Get("/forbidden", errorsHandler.Forbidden)
		app.Get("/unauthorized", errorsHandler.Unauthorized)

		// Role-based dashboards
		dashboardHandler := dashboardfeature.NewHandler(s.Admin, s.Agent, appCfg.SnapshotMaxAge, errLog, logger)
		app.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sm))

		// Table views, exports and deletes
		tablesHandler := tablesfeature.NewHandler(recordstore.New(db, logger), s.Audit, s.Metrics, publish,
			appCfg.DefaultPerPage, appCfg.ExportMaxRows, errLog, logger)
		app.Mount("/tables", tablesfeature.Routes(tablesHandler, sm))

		// Create/update forms and agent assignment
		formsHandler := formsfeature.NewHandler(db, s.Audit, s.Metrics, publish, errLog, logger)
		formsHandler.DefaultExpiry = appCfg.AssignmentDefaultExpiry
		app.Mount("/forms", formsfeature.Routes(formsHandler, sm))

		assignmentsHandler := assignmentsfeature.NewHandler(assignmentstore.New(db, logger), s.Audit, s.Metrics, publish, errLog, logger)
		app.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler, sm))

		notificationsHandler := notificationsfeature.NewHandler(notificationstore.New(db), s.Audit, s.Metrics, publish, errLog, logger)
		app.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sm))

		approvalsHandler := approvalsfeature.NewHandler(sellerstore.New(db), s.Audit, s.Metrics, publish, errLog, logger)
		app.Mount("/approvals", approvalsfeature.Routes(approvalsHandler, sm))

		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		app.Mount("/audit", auditlogfeature.Routes(auditHandler, sm))
	})

	return r, nil
}

// plaintextHTTP tells the CSRF layer that requests arrive over plain HTTP
// so it skips the HTTPS-only referer check in development.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	errorsfeature.Write(w, http.StatusForbidden, "Your session token is missing or expired. Reload and try again.")
}
