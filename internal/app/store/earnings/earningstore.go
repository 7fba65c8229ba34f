package earningstore

import (
	"context"
	"errors"

	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("earnings")}
}

// Latest returns the agent's most recent month, or nil when none is recorded.
func (s *Store) Latest(ctx context.Context, agentID primitive.ObjectID) (*models.Earning, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	var e models.Earning
	err := s.c.FindOne(ctx, bson.M{"agent_id": agentID}, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Record upserts one month of commission for an agent.
func (s *Store) Record(ctx context.Context, agentID primitive.ObjectID, year, month int, commission float64) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"agent_id": agentID, "year": year, "month": month},
		bson.M{
			"$set":         bson.M{"total_commission": commission},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
