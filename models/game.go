package models

import (
	"time"

	"gorm.io/gorm"
)

// Game is one typing duel between exactly two participants, one of
// which may be the bot account. The challenge content is fixed at
// creation and never regenerated.
type Game struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	// Exactly two user IDs, order not meaningful.
	PlayerIDs StringList `gorm:"type:text;not null" json:"player_ids"`

	// Challenge bundle, immutable after creation.
	Language          string     `gorm:"type:varchar(8)" json:"language"`
	Phrase            string     `json:"phrase"`
	Words             StringList `gorm:"type:text" json:"words"`
	LettersAndSymbols SymbolList `gorm:"type:text" json:"letters_and_symbols"`
	Holds             HoldList   `gorm:"type:text" json:"holds"`

	// PlayersAccepted only grows while the match is in the found phase.
	// Bot matches are created with the bot pre-seeded here.
	PlayersAccepted StringList `gorm:"type:text" json:"players_accepted"`

	// Progress keys are a subset of PlayerIDs.
	Progress ProgressMap `gorm:"type:text" json:"progress"`

	// WinnerID is set exactly once, by the first player to complete the
	// holds step, and never overwritten.
	WinnerID *string `json:"winner_id,omitempty"`

	AgainstBot bool `gorm:"default:false" json:"against_bot"`

	// Per-match cosmetic identity shown for the bot opponent. Stored
	// here rather than on the shared bot row so concurrent bot matches
	// present consistent, distinct opponents.
	BotNickname string `json:"bot_nickname,omitempty"`
	BotAvatar   string `json:"bot_avatar,omitempty"`

	Timestamps
}

// OpponentOf returns the other participant's ID, or "" when userID is
// not a participant.
func (g *Game) OpponentOf(userID string) string {
	for _, id := range g.PlayerIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// HumanPlayerIDs returns the participants excluding the given bot ID.
func (g *Game) HumanPlayerIDs(botID string) []string {
	var humans []string
	for _, id := range g.PlayerIDs {
		if id != botID {
			humans = append(humans, id)
		}
	}
	return humans
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
