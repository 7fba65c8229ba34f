package sellerstore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errDecision = errors.New(`decision must be "verified"|"rejected"`)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("seller_profiles"), users: userstore.New(db)}
}

// List returns seller profiles in the given verification status ("" for
// all), oldest first so the approval queue is worked in order.
func (s *Store) List(ctx context.Context, status string) ([]models.SellerProfile, error) {
	filter := bson.M{}
	if status != "" {
		filter["verification_status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.SellerProfile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.UserID)
	}
	refs, err := s.users.Refs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].User = refs[out[i].UserID]
	}
	return out, nil
}

// ListPending is the approval queue.
func (s *Store) ListPending(ctx context.Context) ([]models.SellerProfile, error) {
	return s.List(ctx, models.VerificationPending)
}

// CountPending returns the size of the approval queue.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"verification_status": models.VerificationPending})
}

// Decide approves or rejects a profile and mirrors the decision onto the
// owning user. Returns mongo.ErrNoDocuments when id is unknown.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, decision string) (models.SellerProfile, error) {
	if decision != models.VerificationVerified && decision != models.VerificationRejected {
		return models.SellerProfile{}, errDecision
	}
	var out models.SellerProfile
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"verification_status": decision, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.SellerProfile{}, err
	}
	if err := s.users.SetVerification(ctx, out.UserID, decision); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return out, err
	}
	return out, nil
}
