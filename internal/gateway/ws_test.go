package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/pal/internal/gateway/ws"
)

func dialWS(t *testing.T, env *testEnv) (*websocket.Conn, context.Context) {
	t.Helper()
	ts := httptest.NewServer(env.srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	require.Eventually(t, func() bool { return env.srv.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn, ctx
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(ws.Frame) bool) ws.Frame {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		f, err := ws.UnmarshalFrame(data)
		require.NoError(t, err)
		if match(f) {
			return f
		}
	}
}

func sendRequest(t *testing.T, ctx context.Context, conn *websocket.Conn, id string, method ws.Method, params any) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	data, err := ws.MarshalFrame(ws.Frame{Type: ws.FrameTypeRequest, ID: id, Method: string(method), Params: raw})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func request(t *testing.T, ctx context.Context, conn *websocket.Conn, id string, method ws.Method, params any) ws.Frame {
	t.Helper()
	sendRequest(t, ctx, conn, id, method, params)
	return readUntil(t, ctx, conn, func(f ws.Frame) bool {
		return f.Type == ws.FrameTypeResponse && f.ID == id
	})
}

func TestWS_AddTaskBroadcastsEvent(t *testing.T) {
	env := newTestEnv(t)
	conn, ctx := dialWS(t, env)

	sendRequest(t, ctx, conn, "1", ws.MethodAddTask, map[string]string{"name": "from ws"})

	// The response and the broadcast event may arrive in either order.
	var res, evt *ws.Frame
	readUntil(t, ctx, conn, func(f ws.Frame) bool {
		switch {
		case f.Type == ws.FrameTypeResponse && f.ID == "1":
			res = &f
		case f.Type == ws.FrameTypeEvent && f.Event == "task.changed":
			evt = &f
		}
		return res != nil && evt != nil
	})

	require.NotNil(t, res.OK)
	require.True(t, *res.OK, res.Error)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "added", payload["action"])
	assert.Equal(t, "from ws", payload["name"])
}

func TestWS_Errors(t *testing.T) {
	env := newTestEnv(t)
	conn, ctx := dialWS(t, env)

	res := request(t, ctx, conn, "1", ws.MethodCompleteTask, map[string]int{"id": 42})
	require.NotNil(t, res.OK)
	assert.False(t, *res.OK)
	assert.Equal(t, "task not found", res.Error)

	res = request(t, ctx, conn, "2", ws.Method("explode"), map[string]any{})
	assert.False(t, *res.OK)
	assert.Equal(t, "unknown method: explode", res.Error)
}

func TestWS_SendMessage(t *testing.T) {
	env := newTestEnv(t)
	conn, ctx := dialWS(t, env)

	res := request(t, ctx, conn, "1", ws.MethodSendMessage, map[string]string{"content": "hello"})
	require.True(t, *res.OK, res.Error)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(res.Payload, &payload))
	assert.Equal(t, "ok", payload["response"])
}
