package models

import "time"

// GameHistory is the append-only archival snapshot of a finished match,
// one row per human participant. Duplicates the final challenge content
// and progress so the live Game row can be forgotten once both players
// leave. Never mutated after insert.
type GameHistory struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	GameID string `gorm:"index;not null" json:"game_id"`

	Language          string     `gorm:"type:varchar(8)" json:"language"`
	Phrase            string     `json:"phrase"`
	Words             StringList `gorm:"type:text" json:"words"`
	LettersAndSymbols SymbolList `gorm:"type:text" json:"letters_and_symbols"`
	Holds             HoldList   `gorm:"type:text" json:"holds"`

	Progress   ProgressMap `gorm:"type:text" json:"progress"`
	WinnerID   string      `json:"winner_id"`
	AgainstBot bool        `json:"against_bot"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
