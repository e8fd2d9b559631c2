package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/pal/internal/memory"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	s, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)

	a, err := db.AddTask(ctx, "a")
	require.NoError(t, err)
	_, err = db.AddTask(ctx, "b")
	require.NoError(t, err)
	_, err = db.AddTask(ctx, "c")
	require.NoError(t, err)
	_, err = db.CompleteTask(ctx, a.ID)
	require.NoError(t, err)

	_, err = db.AppendMessage(ctx, memory.RoleUser, "q", 10)
	require.NoError(t, err)
	_, err = db.AppendMessage(ctx, memory.RoleModel, "a", 10)
	require.NoError(t, err)

	s, err = db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalTasks:           3,
		CompletedTasks:       1,
		PendingTasks:         2,
		ConversationMessages: 2,
	}, s)
}
