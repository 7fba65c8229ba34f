package assignmentstore

import (
	"context"
	"errors"
	"time"

	inquirystore "github.com/homeandown/estatehub/internal/app/store/inquiries"
	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/txn"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultExpiry is how long an agent has to answer an assignment.
const DefaultExpiry = 24 * time.Hour

var (
	ErrAgentNotAssignable = errors.New("agent is not active and verified")
	ErrNotPending         = errors.New("assignment is no longer pending")
	ErrExpired            = errors.New("assignment has expired")
	ErrNotYours           = errors.New("assignment belongs to another agent")
)

type Store struct {
	db            *mongo.Database
	c             *mongo.Collection
	users         *userstore.Store
	inquiries     *inquirystore.Store
	notifications *notificationstore.Store
	log           *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:            db,
		c:             db.Collection("agent_inquiry_assignments"),
		users:         userstore.New(db),
		inquiries:     inquirystore.New(db),
		notifications: notificationstore.New(db),
		log:           log,
	}
}

// Assign hands inquiryID to agentID. The assignment and the inquiry's
// assigned_agent_id are written together. expiry <= 0 uses DefaultExpiry.
func (s *Store) Assign(ctx context.Context, inquiryID, agentID primitive.ObjectID, notes string, expiry time.Duration) (models.Assignment, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Assignment{}, ErrAgentNotAssignable
		}
		return models.Assignment{}, err
	}
	if !agent.IsVerifiedAgent() {
		return models.Assignment{}, ErrAgentNotAssignable
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	now := time.Now().UTC()
	a := models.Assignment{
		ID:         primitive.NewObjectID(),
		InquiryID:  inquiryID,
		AgentID:    agentID,
		Status:     models.AssignmentPending,
		Notes:      notes,
		AssignedAt: now,
		ExpiresAt:  now.Add(expiry),
		UpdatedAt:  now,
	}
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, a); err != nil {
			return err
		}
		return s.inquiries.AssignAgent(ctx, inquiryID, &agentID)
	})
	if err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// List returns assignments across all agents, most recent first. An empty
// status does not constrain; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, status string, limit int64) ([]models.Assignment, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForAgent returns the agent's assignments, most recent first, with the
// inquiry joined.
func (s *Store) ListForAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"agent_id": agentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		in, err := s.inquiries.GetByID(ctx, out[i].InquiryID)
		if err == nil {
			out[i].Inquiry = in
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return out, nil
}

// CountByStatus returns how many of the agent's assignments are in each status.
func (s *Store) CountByStatus(ctx context.Context, agentID primitive.ObjectID) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"agent_id": agentID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// Respond records the agent's answer. Accepting marks the inquiry responded
// and posts an "Assignment Accepted" notification. agentName is used in
// that notification.
func (s *Store) Respond(ctx context.Context, id, agentID primitive.ObjectID, accept bool, notes, agentName string) (models.Assignment, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Assignment{}, err
	}
	if a.AgentID != agentID {
		return models.Assignment{}, ErrNotYours
	}
	now := time.Now().UTC()
	if a.Expired(now) {
		return models.Assignment{}, ErrExpired
	}
	if a.Status != models.AssignmentPending {
		return models.Assignment{}, ErrNotPending
	}

	status := models.AssignmentDeclined
	if accept {
		status = models.AssignmentAccepted
	}
	set := bson.M{"status": status, "responded_at": now, "updated_at": now}
	if notes != "" {
		set["notes"] = notes
	}
	// Matching on status guards against a concurrent answer or expiry.
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": models.AssignmentPending}, bson.M{"$set": set})
	if err != nil {
		return models.Assignment{}, err
	}
	if res.ModifiedCount == 0 {
		return models.Assignment{}, ErrNotPending
	}
	a.Status = status
	a.RespondedAt = &now
	a.UpdatedAt = now
	if notes != "" {
		a.Notes = notes
	}

	if accept {
		if err := s.inquiries.SetStatus(ctx, a.InquiryID, models.InquiryResponded); err != nil {
			return a, err
		}
		msg := "Agent " + agentName + " accepted the inquiry assignment"
		if err := s.notifications.Event(ctx, "Assignment Accepted", msg, "inquiry", a.InquiryID.Hex()); err != nil {
			s.log.Warn("assignment notification failed", zap.String("assignment_id", id.Hex()), zap.Error(err))
		}
	}
	return a, nil
}

// ExpireOverdue marks pending assignments past their deadline as expired and
// returns how many changed.
func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.AssignmentPending, "expires_at": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.AssignmentExpired, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
