// Package tables serves the admin list views: filtered, paginated JSON
// tables, CSV/XLSX downloads of the filtered set, and confirmed deletes.
package tables

import (
	"context"
	"net/http"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/gateway"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Records loads and deletes records by kind.
type Records interface {
	Load(ctx context.Context, kind models.Kind, limit int64) ([]models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id primitive.ObjectID) error
}

type meta struct {
	Title string
	Table string
}

var kinds = map[models.Kind]meta{
	models.KindUser:         {"Users", gateway.Users},
	models.KindProperty:     {"Properties", gateway.Properties},
	models.KindBooking:      {"Bookings", gateway.Bookings},
	models.KindInquiry:      {"Inquiries", gateway.Inquiries},
	models.KindNotification: {"Notifications", gateway.Notifications},
	models.KindAssignment:   {"Agent Assignments", gateway.Assignments},
	models.KindSeller:       {"Seller Approvals", gateway.Sellers},
}

type Handler struct {
	Records        Records
	Audit          *auditlog.Logger
	Metrics        *telemetry.Metrics
	OnRefresh      func(ctx context.Context, ev realtime.Event)
	DefaultPerPage int
	MaxRows        int64
	ErrLog         *uierrors.ErrorLogger
	Log            *zap.Logger
}

func NewHandler(records Records, audit *auditlog.Logger, m *telemetry.Metrics, onRefresh func(context.Context, realtime.Event), defaultPerPage int, maxRows int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Records:        records,
		Audit:          audit,
		Metrics:        m,
		OnRefresh:      onRefresh,
		DefaultPerPage: defaultPerPage,
		MaxRows:        maxRows,
		ErrLog:         errLog,
		Log:            logger,
	}
}

// kind resolves the {kind} URL parameter, writing a 404 when unknown.
func (h *Handler) kind(w http.ResponseWriter, r *http.Request, raw string) (models.Kind, meta, bool) {
	k, ok := models.ParseKind(raw)
	if !ok {
		uierrors.RenderNotFound(w, r, "Unknown table.")
		return "", meta{}, false
	}
	return k, kinds[k], true
}

func (h *Handler) refresh(ctx context.Context, ev realtime.Event) {
	if h.OnRefresh != nil {
		h.OnRefresh(ctx, ev)
	}
}
