package models

import (
	"time"
)

// User session states. A user holds exactly one of these at a time;
// queue fields and the active game pointer must agree with it
// (StatusInQueue iff QueueID is set, StatusGameFound/StatusInGame iff
// ActiveGameID is set).
const (
	StatusOnline    = "online"
	StatusInQueue   = "in_queue"
	StatusGameFound = "game_found"
	StatusInGame    = "in_game"
)

// BotAuthID marks the single reserved bot account. The row must exist
// before bot matches can be created — its absence is a deployment defect.
const BotAuthID = "bot"

// User is the local session/matchmaking record for a player. Identity
// (AuthID) comes from the external auth layer; everything else is owned
// and mutated by this service.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	AuthID   string `gorm:"uniqueIndex;not null" json:"auth_id"`
	Nickname string `gorm:"not null" json:"nickname"`
	Avatar   string `json:"avatar"`

	Status string `gorm:"type:varchar(16);default:'online';index" json:"status"`

	// Queue membership. QueueID is the opaque waiting token, QueuedAt
	// orders the pool FIFO. Both nil when the user is not waiting.
	QueueID  *string    `gorm:"index" json:"queue_id,omitempty"`
	QueuedAt *time.Time `json:"queued_at,omitempty"`

	// ActiveGameID points at the current Game while status is
	// game_found or in_game.
	ActiveGameID *string `gorm:"index" json:"active_game_id,omitempty"`

	Timestamps
}

func (u *User) IsBot() bool {
	return u.AuthID == BotAuthID
}
