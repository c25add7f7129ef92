package domain

import "time"

// SessionStatus enumerates chat transport session states.
type SessionStatus string

const (
	SessionStatusConnected    SessionStatus = "CONNECTED"
	SessionStatusDisconnected SessionStatus = "DISCONNECTED"
	SessionStatusPairing      SessionStatus = "PAIRING"
)

// MessageDirection distinguishes customer messages from agent replies.
type MessageDirection string

const (
	MessageInbound  MessageDirection = "INBOUND"
	MessageOutbound MessageDirection = "OUTBOUND"
)

// Conversation groups the message history with one customer phone number.
type Conversation struct {
	ID            string
	CustomerPhone string
	CustomerName  string
	ActiveAgentID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is one chat turn within a conversation.
type Message struct {
	ID             string
	ConversationID string
	Direction      MessageDirection
	Body           string
	AgentID        string
	CreatedAt      time.Time
}
