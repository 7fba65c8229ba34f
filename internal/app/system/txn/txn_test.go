package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/homeandown/estatehub/internal/app/system/txn"
	"github.com/homeandown/estatehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("duplicate key"), false},
		{"standalone server code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"illegal operation code", mongo.CommandError{Code: 51}, true},
		{"operation not allowed in transaction", mongo.CommandError{Code: 263}, true},
		{"other command code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"replica set wording", errors.New("Transaction failed: not a REPLICA SET member"), true},
		{"sessions unsupported", errors.New("session operations are not supported"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
		{"wrapped", errors.Join(errors.New("assign inquiry"), mongo.CommandError{Code: 20}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, txn.IsNotSupported(tt.err))
		})
	}
}

func TestRun_WritesBothDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := db.Collection("inquiries").InsertOne(ctx, bson.M{"name": "Ada", "status": "assigned"}); err != nil {
			return err
		}
		_, err := db.Collection("agent_inquiry_assignments").InsertOne(ctx, bson.M{"status": "pending"})
		return err
	})
	require.NoError(t, err)

	n, err := db.Collection("inquiries").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = db.Collection("agent_inquiry_assignments").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("agent not found")
	err := txn.Run(ctx, db, zap.NewNop(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
