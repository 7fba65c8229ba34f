package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/homeandown/estatehub/internal/app/store/audit"
	"github.com/homeandown/estatehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in and sign-out events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for record changes, assignments, approvals and exports.
	// Same values as Auth.
	Admin string
}

// Logger writes audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Table != "" {
		fields = append(fields, zap.String("table", event.Table), zap.String("record_id", event.RecordID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func oid(hex string) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &id
}

func (l *Logger) auth(ctx context.Context, r *http.Request, eventType string, userID *primitive.ObjectID, reason, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       reason == "",
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginSuccess, &userID, "", email)
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventLoginFailedUserNotFound, nil, "user not found", email)
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedWrongPassword, &userID, "wrong password", email)
}

func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedUserDisabled, &userID, "user disabled", email)
}

// Logout accepts the string id held in the session.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    oid(userID),
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Admin Events ---

// Admin logs an admin action on one record. actorID is the session user id.
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType, actorID, table, recordID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   oid(actorID),
		Table:     table,
		RecordID:  recordID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

func (l *Logger) RecordCreated(ctx context.Context, r *http.Request, actorID, table, recordID string) {
	l.Admin(ctx, r, audit.EventRecordCreated, actorID, table, recordID, nil)
}

func (l *Logger) RecordUpdated(ctx context.Context, r *http.Request, actorID, table, recordID string) {
	l.Admin(ctx, r, audit.EventRecordUpdated, actorID, table, recordID, nil)
}

func (l *Logger) RecordDeleted(ctx context.Context, r *http.Request, actorID, table, recordID string) {
	l.Admin(ctx, r, audit.EventRecordDeleted, actorID, table, recordID, nil)
}

func (l *Logger) AgentAssigned(ctx context.Context, r *http.Request, actorID, inquiryID, agentID string) {
	l.Admin(ctx, r, audit.EventAgentAssigned, actorID, "inquiries", inquiryID, map[string]string{"agent_id": agentID})
}

func (l *Logger) AssignmentResponded(ctx context.Context, r *http.Request, agentID, assignmentID, status string) {
	l.Admin(ctx, r, audit.EventAssignmentResponded, agentID, "agent_inquiry_assignments", assignmentID, map[string]string{"status": status})
}

func (l *Logger) SellerDecided(ctx context.Context, r *http.Request, actorID, profileID, decision string) {
	l.Admin(ctx, r, audit.EventSellerDecided, actorID, "seller_profiles", profileID, map[string]string{"decision": decision})
}

func (l *Logger) DataExported(ctx context.Context, r *http.Request, actorID, table, format string, rows int) {
	l.Admin(ctx, r, audit.EventDataExported, actorID, table, "", map[string]string{
		"format": format,
		"rows":   intToString(rows),
	})
}

func (l *Logger) NotificationCreated(ctx context.Context, r *http.Request, actorID, notificationID, audience string) {
	l.Admin(ctx, r, audit.EventNotificationCreated, actorID, "notifications", notificationID, map[string]string{"audience": audience})
}

func intToString(i int) string {
	return strconv.Itoa(i)
}
