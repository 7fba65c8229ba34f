// Package gateway is the read side of the remote data store: counts,
// numeric column reads and untyped row fetches by collection name.
//
// Dashboard and table code depends on the Gateway interface; Mongo is the
// production implementation.
package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Users         = "users"
	Properties    = "properties"
	Bookings      = "bookings"
	Inquiries     = "inquiries"
	Notifications = "notifications"
	Assignments   = "agent_inquiry_assignments"
	Sellers       = "seller_profiles"
	Earnings      = "earnings"
)

// FindOptions shapes a Find call. Zero values mean no sort, no limit and
// all fields.
type FindOptions struct {
	Sort   bson.D
	Limit  int64
	Fields []string
}

// Gateway reads from the data store. Errors are returned as-is; callers
// decide whether to degrade.
type Gateway interface {
	Count(ctx context.Context, table string, filter bson.M) (int64, error)
	Values(ctx context.Context, table, field string, filter bson.M) ([]*float64, error)
	Find(ctx context.Context, table string, filter bson.M, opts FindOptions) ([]models.Row, error)
}

// Mongo implements Gateway over a database.
type Mongo struct {
	db *mongo.Database
}

// New returns a Mongo gateway.
func New(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// Count returns the number of documents matching filter.
func (g *Mongo) Count(ctx context.Context, table string, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	n, err := g.db.Collection(table).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Values reads one numeric field from every matching document. Missing,
// null or non-numeric values come back as nil entries.
func (g *Mongo) Values(ctx context.Context, table, field string, filter bson.M) ([]*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetProjection(bson.M{field: 1, "_id": 0})
	cur, err := g.db.Collection(table).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("values %s.%s: %w", table, field, err)
	}
	defer cur.Close(ctx)

	var out []*float64
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", table, field, err)
		}
		out = append(out, Number(doc[field]))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("values %s.%s: %w", table, field, err)
	}
	return out, nil
}

// Find returns matching documents as ordered rows.
func (g *Mongo) Find(ctx context.Context, table string, filter bson.M, fo FindOptions) ([]models.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if len(fo.Sort) > 0 {
		opts.SetSort(fo.Sort)
	}
	if fo.Limit > 0 {
		opts.SetLimit(fo.Limit)
	}
	if len(fo.Fields) > 0 {
		proj := bson.M{}
		for _, f := range fo.Fields {
			proj[f] = 1
		}
		opts.SetProjection(proj)
	}

	cur, err := g.db.Collection(table).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", table, err)
	}
	defer cur.Close(ctx)

	var out []models.Row
	for cur.Next(ctx) {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
		out = append(out, models.Row{Table: table, Doc: doc})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", table, err)
	}
	return out, nil
}

// Number converts a decoded BSON numeric value to *float64. Anything else
// (including null) is nil.
func Number(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
