package bus

import "time"

// Topics published by the client.
const (
	TopicConnState = "conn.state"     // connection state changed
	TopicMessage   = "chat.message"   // inbound message rendered
	TopicTyping    = "chat.typing"    // peer typing status
	TopicPresence  = "chat.presence"  // peer online status
	TopicRead      = "chat.read"      // read receipt applied
	TopicError     = "chat.error"     // user-facing action failure
	TopicSent      = "chat.sent"      // outbound action accepted by server
)

// Event represents a domain event published on the bus.
type Event struct {
	Topic   string
	At      time.Time
	Payload any
}
