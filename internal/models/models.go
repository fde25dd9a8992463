// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User holds the identity of a connected account.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player represents one participant in a match, human or bot. Bots carry a
// synthetic User and a nil connection.
type Player struct {
	ID        uuid.UUID
	User      *User
	Seat      uint8 // engine seat index, assigned at match start
	IsBot     bool
	Conn      *websocket.Conn
	Connected bool
}

// GameAction is the wire format for player intents received over WebSockets.
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
