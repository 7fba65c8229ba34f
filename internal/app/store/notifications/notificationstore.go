package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/homeandown/estatehub/internal/app/system/htmlsanitize"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errTitle    = errors.New("title is required")
	errStatus   = errors.New(`status must be "draft"|"scheduled"|"sent"`)
	errAudience = errors.New(`audience must be "all"|"buyer"|"seller"|"agent"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Latest returns up to limit notifications, newest first.
func (s *Store) Latest(ctx context.Context, limit int64) ([]models.Notification, error) {
	return s.find(ctx, bson.M{}, limit)
}

// ListSent returns sent notifications that carry delivery analytics,
// sent on or after since (zero means all), newest first.
func (s *Store) ListSent(ctx context.Context, since time.Time) ([]models.Notification, error) {
	filter := bson.M{
		"status":    models.NotificationSent,
		"analytics": bson.M{"$ne": nil},
	}
	if !since.IsZero() {
		filter["sent_at"] = bson.M{"$gte": since}
	}
	return s.find(ctx, filter, 0)
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create stores a notification. A notification created as sent gets SentAt.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.Title = htmlsanitize.StripTags(n.Title)
	n.Message = htmlsanitize.Sanitize(n.Message)
	if n.Title == "" {
		return models.Notification{}, errTitle
	}
	if n.Type == "" {
		n.Type = "info"
	}
	if n.Audience == "" {
		n.Audience = "all"
	}
	switch n.Audience {
	case "all", models.UserTypeBuyer, models.UserTypeSeller, models.UserTypeAgent:
	default:
		return models.Notification{}, errAudience
	}
	if n.Status == "" {
		n.Status = models.NotificationDraft
	}
	now := time.Now().UTC()
	switch n.Status {
	case models.NotificationDraft, models.NotificationScheduled:
	case models.NotificationSent:
		if n.SentAt == nil {
			n.SentAt = &now
		}
	default:
		return models.Notification{}, errStatus
	}

	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Event records a system notification about one entity, such as an agent
// accepting an assignment.
func (s *Store) Event(ctx context.Context, title, message, entityType, entityID string) error {
	_, err := s.Create(ctx, models.Notification{
		Title:      title,
		Message:    message,
		Type:       entityType,
		EntityType: entityType,
		EntityID:   entityID,
	})
	return err
}

// Delete removes a notification. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
