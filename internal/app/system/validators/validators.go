package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("properties", propertiesSchema())
	ensure("bookings", bookingsSchema())
	ensure("inquiries", inquiriesSchema())
	ensure("agent_inquiry_assignments", assignmentsSchema())
	ensure("seller_profiles", sellerProfilesSchema())

	// No validators; the collections still need to exist for the gateway's counts.
	ensure("notifications", nil)
	ensure("earnings", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
	optID    = bson.M{"bsonType": bson.A{"objectId", "null"}}
	amount   = bson.M{"bsonType": bson.A{"double", "int", "long", "decimal", "null"}, "minimum": 0}
)

func enum(values ...string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func schema(required []string, props bson.M) bson.M {
	req := bson.A{}
	for _, r := range required {
		req = append(req, r)
	}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   req,
		"properties": props,
	}}
}

func usersSchema() bson.M {
	return schema([]string{"email", "user_type", "status"}, bson.M{
		"email":     nonBlank,
		"user_type": enum(models.UserTypeAdmin, models.UserTypeAgent, models.UserTypeSeller, models.UserTypeBuyer),
		"status":    enum(models.StatusActive, models.StatusInactive, models.StatusPending),
		"verification_status": enum(
			models.VerificationPending, models.VerificationVerified, models.VerificationRejected, ""),
	})
}

func propertiesSchema() bson.M {
	return schema([]string{"title", "listing_type"}, bson.M{
		"title":        nonBlank,
		"listing_type": enum(models.ListingSale, models.ListingRent),
		"price":        amount,
		"monthly_rent": amount,
		"owner_id":     optID,
	})
}

func bookingsSchema() bson.M {
	return schema([]string{"property_id", "user_id", "booking_date", "booking_time", "status"}, bson.M{
		"property_id":  objectID,
		"user_id":      objectID,
		"agent_id":     optID,
		"booking_date": bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"booking_time": bson.M{"bsonType": "string", "pattern": "^\\d{2}:\\d{2}$"},
		"status":       enum(models.BookingPending, models.BookingConfirmed, models.BookingCancelled),
	})
}

func inquiriesSchema() bson.M {
	return schema([]string{"name", "email", "message", "status"}, bson.M{
		"name":              nonBlank,
		"email":             nonBlank,
		"message":           nonBlank,
		"status":            enum(models.InquiryNew, models.InquiryResponded, models.InquiryClosed),
		"assigned_agent_id": optID,
	})
}

func assignmentsSchema() bson.M {
	return schema([]string{"inquiry_id", "agent_id", "status", "expires_at"}, bson.M{
		"inquiry_id": objectID,
		"agent_id":   objectID,
		"status": enum(models.AssignmentPending, models.AssignmentAccepted,
			models.AssignmentDeclined, models.AssignmentExpired),
		"expires_at": bson.M{"bsonType": "date"},
	})
}

func sellerProfilesSchema() bson.M {
	return schema([]string{"user_id", "business_name", "verification_status"}, bson.M{
		"user_id":       objectID,
		"business_name": nonBlank,
		"verification_status": enum(
			models.VerificationPending, models.VerificationVerified, models.VerificationRejected),
	})
}
