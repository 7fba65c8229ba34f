// Package recordstore loads any record kind as models.Record values for
// table views and exports, with related names joined in.
package recordstore

import (
	"context"
	"errors"
	"fmt"

	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	bookingstore "github.com/homeandown/estatehub/internal/app/store/bookings"
	inquirystore "github.com/homeandown/estatehub/internal/app/store/inquiries"
	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	propertystore "github.com/homeandown/estatehub/internal/app/store/properties"
	sellerstore "github.com/homeandown/estatehub/internal/app/store/sellers"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUnknownKind  = errors.New("unknown record kind")
	ErrNotDeletable = errors.New("records of this kind cannot be deleted")
	ErrNotFound     = errors.New("record not found")
)

type Store struct {
	users         *userstore.Store
	properties    *propertystore.Store
	bookings      *bookingstore.Store
	inquiries     *inquirystore.Store
	notifications *notificationstore.Store
	assignments   *assignmentstore.Store
	sellers       *sellerstore.Store
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		users:         userstore.New(db),
		properties:    propertystore.New(db),
		bookings:      bookingstore.New(db),
		inquiries:     inquirystore.New(db),
		notifications: notificationstore.New(db),
		assignments:   assignmentstore.New(db, log),
		sellers:       sellerstore.New(db),
	}
}

func records[T models.Record](xs []T, err error) ([]models.Record, error) {
	if err != nil {
		return nil, err
	}
	return models.AsRecords(xs), nil
}

// Load returns up to limit records of kind (limit <= 0 means all) in the
// kind's natural list order.
func (s *Store) Load(ctx context.Context, kind models.Kind, limit int64) ([]models.Record, error) {
	switch kind {
	case models.KindUser:
		return records(s.users.List(ctx, userstore.ListFilter{Limit: limit}))
	case models.KindProperty:
		return records(s.properties.List(ctx, propertystore.ListFilter{Limit: limit}))
	case models.KindBooking:
		return records(s.bookings.List(ctx, bookingstore.ListFilter{Limit: limit}))
	case models.KindInquiry:
		return records(s.inquiries.List(ctx, inquirystore.ListFilter{Limit: limit}))
	case models.KindNotification:
		return records(s.notifications.Latest(ctx, limit))
	case models.KindAssignment:
		return records(s.assignments.List(ctx, "", limit))
	case models.KindSeller:
		out, err := records(s.sellers.List(ctx, ""))
		if err == nil && limit > 0 && int64(len(out)) > limit {
			out = out[:limit]
		}
		return out, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Loader is anything that loads records by kind, such as *Store.
type Loader interface {
	Load(ctx context.Context, kind models.Kind, limit int64) ([]models.Record, error)
}

// Capped loads at most maxRows records of kind and reports whether the
// collection holds more. It asks for one extra row to tell. maxRows <= 0
// loads everything.
func Capped(ctx context.Context, l Loader, kind models.Kind, maxRows int64) ([]models.Record, bool, error) {
	if maxRows <= 0 {
		recs, err := l.Load(ctx, kind, 0)
		return recs, false, err
	}
	recs, err := l.Load(ctx, kind, maxRows+1)
	if err != nil {
		return nil, false, err
	}
	if int64(len(recs)) > maxRows {
		return recs[:maxRows], true, nil
	}
	return recs, false, nil
}

// Delete removes one record. It returns ErrNotFound when nothing matched.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id primitive.ObjectID) error {
	var (
		n   int64
		err error
	)
	switch kind {
	case models.KindUser:
		n, err = s.users.Delete(ctx, id)
	case models.KindProperty:
		n, err = s.properties.Delete(ctx, id)
	case models.KindBooking:
		n, err = s.bookings.Delete(ctx, id)
	case models.KindInquiry:
		n, err = s.inquiries.Delete(ctx, id)
	case models.KindNotification:
		n, err = s.notifications.Delete(ctx, id)
	case models.KindAssignment:
		n, err = s.assignments.Delete(ctx, id)
	case models.KindSeller:
		return ErrNotDeletable
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
