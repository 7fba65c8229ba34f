package propertystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/customid"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errBadListingType = errors.New(`listing_type must be "SALE"|"RENT"`)
	errTitleRequired  = errors.New("title is required")
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("properties"), users: userstore.New(db)}
}

// GetByID loads a property by ObjectID, with its owner joined.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	out := []models.Property{p}
	if err := s.joinOwners(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListFilter narrows List. Empty fields do not constrain.
type ListFilter struct {
	ListingType string
	Status      string
	OwnerID     *primitive.ObjectID
	Limit       int64
}

// List returns properties, newest first, with owners joined.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Property, error) {
	filter := bson.M{}
	if f.ListingType != "" {
		filter["listing_type"] = f.ListingType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.OwnerID != nil {
		filter["owner_id"] = *f.OwnerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Property{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := s.joinOwners(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) joinOwners(ctx context.Context, ps []models.Property) error {
	ids := make([]primitive.ObjectID, 0, len(ps))
	for _, p := range ps {
		if !p.Unassigned() {
			ids = append(ids, *p.OwnerID)
		}
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range ps {
		if !ps[i].Unassigned() {
			ps[i].Owner = refs[*ps[i].OwnerID]
		}
	}
	return nil
}

// Refs loads title/custom_id of the given properties, keyed by ID.
func (s *Store) Refs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.PropertyRef, error) {
	out := make(map[primitive.ObjectID]*models.PropertyRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"title": 1, "custom_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID] = p.Ref()
	}
	return out, cur.Err()
}

func prepare(p *models.Property) error {
	p.Title = normalize.Name(p.Title)
	if p.Title == "" {
		return errTitleRequired
	}
	p.TitleCI = text.Fold(p.Title)
	p.ListingType = normalize.Upper(p.ListingType)
	switch p.ListingType {
	case models.ListingSale, models.ListingRent:
	default:
		return errBadListingType
	}
	p.Status = normalize.Lower(p.Status)
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.OwnerID != nil && p.OwnerID.IsZero() {
		p.OwnerID = nil
	}
	return nil
}

// Create inserts a new property.
func (s *Store) Create(ctx context.Context, p models.Property) (models.Property, error) {
	if err := prepare(&p); err != nil {
		return models.Property{}, err
	}
	p.ID = primitive.NewObjectID()
	if p.CustomID == "" {
		p.CustomID = customid.New(customid.Property)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Owner = nil

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Property{}, err
	}
	return p, nil
}

// Update replaces the editable fields of a property. Returns
// mongo.ErrNoDocuments when id is unknown.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Property) (models.Property, error) {
	if err := prepare(&p); err != nil {
		return models.Property{}, err
	}
	set := bson.M{
		"title":         p.Title,
		"title_ci":      p.TitleCI,
		"property_type": p.PropertyType,
		"city":          p.City,
		"state":         p.State,
		"price":         p.Price,
		"monthly_rent":  p.MonthlyRent,
		"listing_type":  p.ListingType,
		"status":        p.Status,
		"featured":      p.Featured,
		"verified":      p.Verified,
		"owner_id":      p.OwnerID,
		"agent_id":      p.AgentID,
		"updated_at":    time.Now().UTC(),
	}
	var out models.Property
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return models.Property{}, err
	}
	return out, nil
}

// Delete removes a property. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
