// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"errors"
	"sync"

	"github.com/homeandown/estatehub/internal/app/store/gateway"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrUnavailable is returned for tables marked as failing.
var ErrUnavailable = errors.New("gatewaytest: table unavailable")

// CountFunc answers a Count call.
type CountFunc func(filter bson.M) (int64, error)

// Fake answers gateway calls from canned data. Counts are keyed by table;
// a CountFunc can inspect the filter when one table backs several
// sub-queries.
type Fake struct {
	mu sync.Mutex

	Counts  map[string]CountFunc
	Vals    map[string][]*float64 // key: table + "." + field
	Rows    map[string][]models.Row
	Failing map[string]bool

	Calls []string
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Counts:  map[string]CountFunc{},
		Vals:    map[string][]*float64{},
		Rows:    map[string][]models.Row{},
		Failing: map[string]bool{},
	}
}

// SetCount makes every Count on table return n.
func (f *Fake) SetCount(table string, n int64) *Fake {
	f.Counts[table] = func(bson.M) (int64, error) { return n, nil }
	return f
}

// Fail makes every call on table return ErrUnavailable.
func (f *Fake) Fail(tables ...string) *Fake {
	for _, t := range tables {
		f.Failing[t] = true
	}
	return f
}

func (f *Fake) record(op, table string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op+" "+table)
	return f.Failing[table]
}

// Count implements gateway.Gateway.
func (f *Fake) Count(_ context.Context, table string, filter bson.M) (int64, error) {
	if f.record("count", table) {
		return 0, ErrUnavailable
	}
	if fn, ok := f.Counts[table]; ok {
		return fn(filter)
	}
	return 0, nil
}

// Values implements gateway.Gateway.
func (f *Fake) Values(_ context.Context, table, field string, _ bson.M) ([]*float64, error) {
	if f.record("values", table) {
		return nil, ErrUnavailable
	}
	return f.Vals[table+"."+field], nil
}

// Find implements gateway.Gateway.
func (f *Fake) Find(_ context.Context, table string, _ bson.M, opts gateway.FindOptions) ([]models.Row, error) {
	if f.record("find", table) {
		return nil, ErrUnavailable
	}
	rows := f.Rows[table]
	if opts.Limit > 0 && int64(len(rows)) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return rows, nil
}

// Add appends rows built from typed values to table. It panics on values
// that cannot be marshaled, which only happens with a broken test.
func (f *Fake) Add(table string, docs ...any) *Fake {
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			panic(err)
		}
		var doc bson.D
		if err := bson.Unmarshal(raw, &doc); err != nil {
			panic(err)
		}
		f.Rows[table] = append(f.Rows[table], models.Row{Table: table, Doc: doc})
	}
	return f
}

var _ gateway.Gateway = (*Fake)(nil)
