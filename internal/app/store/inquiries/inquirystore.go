package inquirystore

import (
	"context"
	"errors"
	"time"

	propertystore "github.com/homeandown/estatehub/internal/app/store/properties"
	"github.com/homeandown/estatehub/internal/app/system/htmlsanitize"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errBadStatus = errors.New(`status must be "new"|"responded"|"closed"`)
	errEmpty     = errors.New("name, email and message are required")
)

type Store struct {
	c          *mongo.Collection
	properties *propertystore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("inquiries"), properties: propertystore.New(db)}
}

type ListFilter struct {
	Status  string
	AgentID *primitive.ObjectID
	Since   time.Time
	Limit   int64
}

func (f ListFilter) bson() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.AgentID != nil {
		filter["assigned_agent_id"] = *f.AgentID
	}
	if !f.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": f.Since}
	}
	return filter
}

// GetByID returns the inquiry with its property joined.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	var in models.Inquiry
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&in); err != nil {
		return nil, err
	}
	list := []models.Inquiry{in}
	if err := s.join(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns inquiries, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Inquiry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := s.join(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of inquiries matching f.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.bson())
}

func (s *Store) join(ctx context.Context, ins []models.Inquiry) error {
	var ids []primitive.ObjectID
	for _, in := range ins {
		if in.PropertyID != nil {
			ids = append(ids, *in.PropertyID)
		}
	}
	props, err := s.properties.Refs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range ins {
		if ins[i].PropertyID != nil {
			ins[i].Property = props[*ins[i].PropertyID]
		}
	}
	return nil
}

// Create stores a new inquiry. The message is reduced to plain text.
func (s *Store) Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error) {
	in.Name = normalize.Name(htmlsanitize.StripTags(in.Name))
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.Phone(in.Phone)
	in.Message = htmlsanitize.StripTags(in.Message)
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return models.Inquiry{}, errEmpty
	}
	if in.Status == "" {
		in.Status = models.InquiryNew
	}
	if !validStatus(in.Status) {
		return models.Inquiry{}, errBadStatus
	}

	in.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now
	in.Property = nil

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		return models.Inquiry{}, err
	}
	return in, nil
}

func validStatus(s string) bool {
	switch s {
	case models.InquiryNew, models.InquiryResponded, models.InquiryClosed:
		return true
	}
	return false
}

// SetStatus moves an inquiry to status. Returns mongo.ErrNoDocuments when id
// is unknown.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !validStatus(status) {
		return errBadStatus
	}
	return s.set(ctx, id, bson.M{"status": status})
}

// AssignAgent records agentID as the inquiry's owner. A nil agentID clears it.
func (s *Store) AssignAgent(ctx context.Context, id primitive.ObjectID, agentID *primitive.ObjectID) error {
	return s.set(ctx, id, bson.M{"assigned_agent_id": agentID})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an inquiry. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
