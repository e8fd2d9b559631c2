package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/pal/internal/memory"
)

func TestAppendMessage_ReturnsHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, WithClock(newFakeClock().Now))

	history, err := db.AppendMessage(ctx, memory.RoleUser, "hello", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, memory.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)

	history, err = db.AppendMessage(ctx, memory.RoleModel, "hi there", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "hi there", history[1].Content)
	assert.Equal(t, memory.RoleModel, history[1].Role)
}

func TestAppendMessage_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, WithClock(newFakeClock().Now))

	var history []memory.Message
	for i := 1; i <= 11; i++ {
		role := memory.RoleUser
		if i%2 == 0 {
			role = memory.RoleModel
		}
		var err error
		history, err = db.AppendMessage(ctx, role, fmt.Sprintf("m%d", i), 10)
		require.NoError(t, err)
	}

	require.Len(t, history, 10)
	assert.Equal(t, "m2", history[0].Content)
	assert.Equal(t, "m11", history[9].Content)

	stored, err := db.History(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, stored, 10, "evicted rows must be deleted, not just hidden")
}

func TestAppendMessage_SameTimestampOrderedByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, WithClock(newFakeClock().now.UTC))

	for i := 1; i <= 4; i++ {
		_, err := db.AppendMessage(ctx, memory.RoleUser, fmt.Sprintf("m%d", i), 3)
		require.NoError(t, err)
	}

	history, err := db.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "m2", history[0].Content)
	assert.Equal(t, "m4", history[2].Content)
}

func TestAppendMessage_InvalidBound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.AppendMessage(context.Background(), memory.RoleUser, "x", 0)
	assert.ErrorIs(t, err, ErrInvalidBound)

	_, err = db.History(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidBound)
}

func TestHistory_Empty(t *testing.T) {
	db := openTestDB(t)

	history, err := db.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistory_Limit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, WithClock(newFakeClock().Now))

	for i := 1; i <= 5; i++ {
		_, err := db.AppendMessage(ctx, memory.RoleUser, fmt.Sprintf("m%d", i), 10)
		require.NoError(t, err)
	}

	history, err := db.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m4", history[0].Content)
	assert.Equal(t, "m5", history[1].Content)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.AppendMessage(ctx, memory.RoleUser, "one", 10)
	require.NoError(t, err)
	require.NoError(t, db.ClearHistory(ctx))

	history, err := db.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Clearing an empty history is fine.
	require.NoError(t, db.ClearHistory(ctx))
}
