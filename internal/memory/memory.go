// Package memory provides the bounded conversation buffer.
package memory

import (
	"fmt"
	"strings"
	"time"
)

// MaxMessages is the default retention bound.
const MaxMessages = 10

// Role identifies who produced a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ParseRole normalizes a role name. "assistant" is accepted as an alias of "model".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "model", "assistant":
		return RoleModel, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Message is a single conversation turn.
type Message struct {
	ID        int64     `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
