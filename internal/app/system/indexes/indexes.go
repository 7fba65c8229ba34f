package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is reconciled
idempotently; problems are aggregated so startup can fail fast with the
full list.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range sets() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func idx(name string, keys ...bson.E) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D(keys), Options: options.Index().SetName(name)}
}

func unique(name string, keys ...bson.E) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D(keys), Options: options.Index().SetName(name).SetUnique(true)}
}

func asc(k string) bson.E  { return bson.E{Key: k, Value: 1} }
func desc(k string) bson.E { return bson.E{Key: k, Value: -1} }

// sets lists the desired indexes. Every listed table is filtered by
// created_at for the dashboard's today/week counters.
func sets() []indexSet {
	return []indexSet{
		{"users", []mongo.IndexModel{
			unique("uniq_users_email", asc("email")),
			idx("idx_users_custom_id", asc("custom_id")),
			idx("idx_users_type_status", asc("user_type"), asc("status"), desc("created_at")),
			idx("idx_users_created", desc("created_at")),
		}},
		{"properties", []mongo.IndexModel{
			idx("idx_properties_listing_status", asc("listing_type"), asc("status"), desc("created_at")),
			idx("idx_properties_owner", asc("owner_id")),
			idx("idx_properties_created", desc("created_at")),
		}},
		{"bookings", []mongo.IndexModel{
			idx("idx_bookings_agent_created", asc("agent_id"), desc("created_at")),
			idx("idx_bookings_user_created", asc("user_id"), desc("created_at")),
			idx("idx_bookings_status", asc("status")),
			idx("idx_bookings_created", desc("created_at")),
		}},
		{"inquiries", []mongo.IndexModel{
			idx("idx_inquiries_agent_created", asc("assigned_agent_id"), desc("created_at")),
			idx("idx_inquiries_status", asc("status")),
			idx("idx_inquiries_created", desc("created_at")),
		}},
		{"notifications", []mongo.IndexModel{
			idx("idx_notifications_created", desc("created_at")),
			idx("idx_notifications_status_sent", asc("status"), desc("sent_at")),
		}},
		{"agent_inquiry_assignments", []mongo.IndexModel{
			idx("idx_assignments_agent_assigned", asc("agent_id"), desc("assigned_at")),
			idx("idx_assignments_status_expires", asc("status"), asc("expires_at")),
			idx("idx_assignments_inquiry", asc("inquiry_id")),
		}},
		{"seller_profiles", []mongo.IndexModel{
			unique("uniq_seller_profiles_user", asc("user_id")),
			idx("idx_seller_profiles_status_created", asc("verification_status"), asc("created_at")),
		}},
		{"earnings", []mongo.IndexModel{
			unique("uniq_earnings_agent_month", asc("agent_id"), desc("year"), desc("month")),
		}},
		{"audit_events", []mongo.IndexModel{
			idx("idx_audit_timestamp", desc("timestamp")),
			idx("idx_audit_user_timestamp", asc("user_id"), desc("timestamp")),
			idx("idx_audit_actor_timestamp", asc("actor_id"), desc("timestamp")),
			idx("idx_audit_category_type_timestamp", asc("category"), asc("event_type"), desc("timestamp")),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                       */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when the same keys exist under a
// different name or options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(ix.Key)] = ix
	}
	return existing
}

func createErr(coll *mongo.Collection, name string, uniq bool, err error) string {
	if uniq && isDuplicateKeyErr(err) {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

// replace drops the index named old and creates m in its place.
func replace(ctx context.Context, coll *mongo.Collection, old string, m mongo.IndexModel, name string, uniq bool) string {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		return fmt.Sprintf("%s(%s): drop %s failed: %v", coll.Name(), name, old, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		return createErr(coll, name, uniq, err)
	}
	return ""
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		name := *m.Options.Name
		uniq := m.Options.Unique != nil && *m.Options.Unique
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", uniq))

		ex, found := existing[sig]
		switch {
		case found && sameBoolPtr(m.Options.Unique, ex.Unique) && ex.Name == name:
			log.Debug("reusing existing index")
			continue
		case found:
			// Name or uniqueness differs: drop and recreate.
			if msg := replace(ctx, coll, ex.Name, m, name, uniq); msg != "" {
				log.Warn("index replace failed", zap.String("error", msg))
				errs = append(errs, msg)
				continue
			}
			log.Info("index replaced", zap.String("from", ex.Name), zap.Duration("took", time.Since(start)))
			continue
		}

		_, err := coll.Indexes().CreateOne(ctx, m)
		if isOptionsConflictErr(err) {
			// Another process may have created it since we listed.
			if ex, ok := listExisting(ctx, coll)[sig]; ok {
				if sameBoolPtr(m.Options.Unique, ex.Unique) {
					continue
				}
				if msg := replace(ctx, coll, ex.Name, m, name, uniq); msg != "" {
					errs = append(errs, msg)
				}
				continue
			}
		}
		if err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, createErr(coll, name, uniq, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
