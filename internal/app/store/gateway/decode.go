package gateway

import (
	"fmt"

	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Decode converts untyped rows into T by round-tripping each document
// through BSON.
func Decode[T any](rows []models.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		raw, err := bson.Marshal(r.Doc)
		if err != nil {
			return nil, fmt.Errorf("marshal %s row: %w", r.Table, err)
		}
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", r.Table, err)
		}
		out = append(out, v)
	}
	return out, nil
}
