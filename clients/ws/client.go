// Package ws provides a WebSocket client for the pal gateway.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/coder/websocket"

	wsprotocol "github.com/dohr-michael/pal/internal/gateway/ws"
)

// EventHandler receives event frames read while waiting for a response.
type EventHandler func(wsprotocol.Frame)

// Client is a WebSocket client for the pal gateway.
type Client struct {
	conn    *websocket.Conn
	reqSeq  uint64
	ctx     context.Context
	cancel  context.CancelFunc
	onEvent EventHandler
}

// Dial connects to the gateway WebSocket endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(ctx)

	return &Client{
		conn:   conn,
		ctx:    clientCtx,
		cancel: cancel,
	}, nil
}

// OnEvent installs a handler for event frames interleaved with responses.
func (c *Client) OnEvent(h EventHandler) {
	c.onEvent = h
}

// SendMessage sends a user message and returns the assistant's reply.
func (c *Client) SendMessage(content string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	if err := c.Call(wsprotocol.MethodSendMessage, map[string]string{"content": content}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Call sends a request frame and blocks until the matching response arrives.
// A non-nil out receives the decoded response payload.
func (c *Client) Call(method wsprotocol.Method, params any, out any) error {
	seq := atomic.AddUint64(&c.reqSeq, 1)
	id := fmt.Sprintf("req-%d", seq)

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	frame := wsprotocol.Frame{
		Type:   wsprotocol.FrameTypeRequest,
		ID:     id,
		Method: string(method),
		Params: raw,
	}

	data, err := wsprotocol.MarshalFrame(frame)
	if err != nil {
		return err
	}
	if err := c.conn.Write(c.ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("ws write: %w", err)
	}

	for {
		f, err := c.ReadFrame()
		if err != nil {
			return fmt.Errorf("ws read: %w", err)
		}

		switch f.Type {
		case wsprotocol.FrameTypeEvent:
			if c.onEvent != nil {
				c.onEvent(f)
			}
		case wsprotocol.FrameTypeResponse:
			if f.ID != id {
				continue
			}
			if f.OK == nil || !*f.OK {
				return errors.New(f.Error)
			}
			if out == nil || len(f.Payload) == 0 {
				return nil
			}
			return json.Unmarshal(f.Payload, out)
		}
	}
}

// ReadFrame reads the next frame from the connection.
func (c *Client) ReadFrame() (wsprotocol.Frame, error) {
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		return wsprotocol.Frame{}, err
	}
	return wsprotocol.UnmarshalFrame(data)
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
