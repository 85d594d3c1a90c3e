// Package protocol defines the wire format of the dialog WebSocket channel.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Frame type tags accepted from the server.
const (
	TypeNewMessage  = "new_message"
	TypeTyping      = "typing"
	TypeUserStatus  = "user_status"
	TypeMessageRead = "message_read"
)

// ErrUnknownType marks a frame whose type tag is not recognized.
// Callers drop such frames silently.
var ErrUnknownType = errors.New("unknown frame type")

// Message is the server-owned message shape carried in new_message frames.
type Message struct {
	ID        int64  `json:"id"`
	SenderID  int64  `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Time parses the server timestamp. Returns the zero time if it is malformed.
func (m *Message) Time() time.Time {
	return ParseTime(m.CreatedAt)
}

// ParseTime parses a server timestamp in any of its known layouts.
// Malformed input yields the zero time.
func ParseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// User is the peer shape carried in typing and user_status frames.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
	IsOnline bool   `json:"is_online"`
}

// InboundEvent is a decoded frame from the dialog channel.
type InboundEvent interface {
	inboundEvent()
}

// NewMessage carries a freshly delivered message.
type NewMessage struct {
	Message Message
}

// Typing signals a peer's typing indicator state.
type Typing struct {
	User User
}

// UserStatus signals a peer going online or offline.
type UserStatus struct {
	User User
}

// MessageRead signals that a previously sent message was read.
type MessageRead struct {
	MessageID int64
}

func (NewMessage) inboundEvent()  {}
func (Typing) inboundEvent()      {}
func (UserStatus) inboundEvent()  {}
func (MessageRead) inboundEvent() {}

type envelope struct {
	Type      string          `json:"type"`
	Message   json.RawMessage `json:"message"`
	User      json.RawMessage `json:"user"`
	MessageID int64           `json:"message_id"`
}

// DecodeInbound parses one raw frame into an InboundEvent.
// Unrecognized type tags return ErrUnknownType.
func DecodeInbound(data []byte) (InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch env.Type {
	case TypeNewMessage:
		var m Message
		if err := json.Unmarshal(env.Message, &m); err != nil {
			return nil, fmt.Errorf("decode message payload: %w", err)
		}
		return NewMessage{Message: m}, nil
	case TypeTyping:
		var u User
		if err := json.Unmarshal(env.User, &u); err != nil {
			return nil, fmt.Errorf("decode user payload: %w", err)
		}
		return Typing{User: u}, nil
	case TypeUserStatus:
		var u User
		if err := json.Unmarshal(env.User, &u); err != nil {
			return nil, fmt.Errorf("decode user payload: %w", err)
		}
		return UserStatus{User: u}, nil
	case TypeMessageRead:
		return MessageRead{MessageID: env.MessageID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// TypingFrame is the only outbound frame sent over the channel.
type TypingFrame struct {
	Type   string `json:"type"`
	Typing bool   `json:"typing"`
}

// NewTypingFrame builds an outbound typing signal.
func NewTypingFrame(typing bool) TypingFrame {
	return TypingFrame{Type: TypeTyping, Typing: typing}
}
