// Package auditlog serves the audit trail to admins.
package auditlog

import (
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/audit"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
