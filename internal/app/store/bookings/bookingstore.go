package bookingstore

import (
	"context"
	"errors"
	"time"

	propertystore "github.com/homeandown/estatehub/internal/app/store/properties"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errBadStatus = errors.New(`status must be "pending"|"confirmed"|"cancelled"`)
	errBadDate   = errors.New("booking_date must be YYYY-MM-DD")
	errBadTime   = errors.New("booking_time must be HH:MM")
)

type Store struct {
	c          *mongo.Collection
	users      *userstore.Store
	properties *propertystore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:          db.Collection("bookings"),
		users:      userstore.New(db),
		properties: propertystore.New(db),
	}
}

// ListFilter narrows List. Empty fields do not constrain.
type ListFilter struct {
	Status  string
	AgentID *primitive.ObjectID
	UserID  *primitive.ObjectID
	Since   time.Time
	Limit   int64
}

func (f ListFilter) bson() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.AgentID != nil {
		filter["agent_id"] = *f.AgentID
	}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	return filter
}

// List returns bookings, newest first, with property, client and agent joined.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := s.join(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of bookings matching f.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.bson())
}

func (s *Store) join(ctx context.Context, bs []models.Booking) error {
	var propIDs, userIDs []primitive.ObjectID
	for _, b := range bs {
		propIDs = append(propIDs, b.PropertyID)
		userIDs = append(userIDs, b.UserID)
		if b.AgentID != nil {
			userIDs = append(userIDs, *b.AgentID)
		}
	}
	props, err := s.properties.Refs(ctx, propIDs)
	if err != nil {
		return err
	}
	people, err := s.users.Refs(ctx, userIDs)
	if err != nil {
		return err
	}
	for i := range bs {
		bs[i].Property = props[bs[i].PropertyID]
		bs[i].User = people[bs[i].UserID]
		if bs[i].AgentID != nil {
			bs[i].Agent = people[*bs[i].AgentID]
		}
	}
	return nil
}

func validate(b *models.Booking) error {
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	switch b.Status {
	case models.BookingPending, models.BookingConfirmed, models.BookingCancelled:
	default:
		return errBadStatus
	}
	if _, err := time.Parse("2006-01-02", b.BookingDate); err != nil {
		return errBadDate
	}
	if _, err := time.Parse("15:04", b.BookingTime); err != nil {
		return errBadTime
	}
	return nil
}

// Create inserts a new booking.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	if err := validate(&b); err != nil {
		return models.Booking{}, err
	}
	b.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Property, b.User, b.Agent = nil, nil, nil

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// Update rewrites the schedule, status, agent and notes of a booking.
// Returns mongo.ErrNoDocuments when id is unknown.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, b models.Booking) (models.Booking, error) {
	if err := validate(&b); err != nil {
		return models.Booking{}, err
	}
	set := bson.M{
		"booking_date": b.BookingDate,
		"booking_time": b.BookingTime,
		"status":       b.Status,
		"agent_id":     b.AgentID,
		"notes":        b.Notes,
		"updated_at":   time.Now().UTC(),
	}
	var out models.Booking
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return models.Booking{}, err
	}
	return out, nil
}

// Delete removes a booking. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
