package dto

import "time"

// SessionTokenRequest payload. The phone is the customer's natural key; the
// conversation is created on first contact.
type SessionTokenRequest struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
}

// SessionTokenResponse carries the signed session token.
type SessionTokenResponse struct {
	Token          string    `json:"token"`
	ConversationID string    `json:"conversation_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}
