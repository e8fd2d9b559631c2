package ws_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsclient "github.com/dohr-michael/pal/clients/ws"
	"github.com/dohr-michael/pal/internal/assistant"
	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/gateway"
	wsprotocol "github.com/dohr-michael/pal/internal/gateway/ws"
	"github.com/dohr-michael/pal/internal/memory"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/storage"
	"github.com/dohr-michael/pal/internal/tasks"
)

type echoGateway struct{}

func (echoGateway) Send(_ context.Context, message string, _ []memory.Message) models.Response {
	return models.Response{Text: "echo: " + message}
}

func newGatewayURL(t *testing.T) string {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "pal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := tasks.NewRegistry(db, bus)
	buffer := memory.NewBuffer(db, memory.MaxMessages, bus)
	asst := assistant.New(echoGateway{}, buffer, assistant.NewDispatcher(registry, bus), bus)

	srv := gateway.NewServer(gateway.Deps{
		Bus:       bus,
		Assistant: asst,
		Tasks:     registry,
		History:   buffer,
		Stats:     db,
	}, "localhost", 0)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
}

func dial(t *testing.T) *wsclient.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	c, err := wsclient.Dial(ctx, newGatewayURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_SendMessage(t *testing.T) {
	c := dial(t)

	reply, err := c.SendMessage("hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", reply)
}

func TestClient_TaskCalls(t *testing.T) {
	c := dial(t)

	var added tasks.Task
	require.NoError(t, c.Call(wsprotocol.MethodAddTask, map[string]string{"name": "water plants"}, &added))
	assert.Equal(t, int64(1), added.ID)
	assert.Equal(t, "water plants", added.Name)

	var done tasks.Task
	require.NoError(t, c.Call(wsprotocol.MethodCompleteTask, map[string]int64{"id": added.ID}, &done))
	assert.True(t, done.Completed)

	var list []tasks.Task
	require.NoError(t, c.Call(wsprotocol.MethodListTasks, nil, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)
}

func TestClient_ErrorResponse(t *testing.T) {
	c := dial(t)

	err := c.Call(wsprotocol.MethodCompleteTask, map[string]int64{"id": 42}, nil)
	require.Error(t, err)
	assert.Equal(t, "task not found", err.Error())
}
