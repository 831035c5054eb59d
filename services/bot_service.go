package services

import (
	"errors"
	"fmt"

	"typing-duel-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BotService synthesizes matches against the reserved bot account for
// users the matcher could not pair.
type BotService struct {
	DB *gorm.DB
}

func NewBotService(db *gorm.DB) *BotService {
	return &BotService{DB: db}
}

// BotUser returns the reserved bot account row.
func (s *BotService) BotUser() (*models.User, error) {
	var bot models.User
	if err := s.DB.First(&bot, "auth_id = ?", models.BotAuthID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBotMissing
		}
		return nil, err
	}
	return &bot, nil
}

// CreateBotMatch builds a full match for one unpaired human against the
// bot. The bot is pre-seeded as accepted and carries a per-match random
// identity on the Game; only the human's session fields are updated,
// conditionally, so a concurrently matched human aborts cleanly.
func (s *BotService) CreateBotMatch(userID string, settings MatchSettings) error {
	bot, err := s.BotUser()
	if err != nil {
		return err
	}

	nickname, avatar := RandomBotIdentity()
	game := models.Game{
		ID:                uuid.NewString(),
		PlayerIDs:         models.StringList{userID, bot.ID},
		Language:          settings.Language,
		Phrase:            settings.Phrase,
		Words:             settings.Words,
		LettersAndSymbols: settings.LettersAndSymbols,
		Holds:             settings.Holds,
		PlayersAccepted:   models.StringList{bot.ID},
		Progress:          models.ProgressMap{},
		AgainstBot:        true,
		BotNickname:       nickname,
		BotAvatar:         avatar,
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&game).Error; err != nil {
			return fmt.Errorf("create bot game: %w", err)
		}
		return claimQueuedUser(tx, userID, game.ID)
	})
}

// EnsureBotUser provisions the reserved bot row if it does not exist
// yet. Run once at startup; the matcher treats a missing row as fatal.
func (s *BotService) EnsureBotUser() (*models.User, error) {
	bot, err := s.BotUser()
	if err == nil {
		return bot, nil
	}
	if !errors.Is(err, ErrBotMissing) {
		return nil, err
	}

	bot = &models.User{
		ID:       uuid.NewString(),
		AuthID:   models.BotAuthID,
		Nickname: "Bot",
		Status:   models.StatusOnline,
	}
	if err := s.DB.Create(bot).Error; err != nil {
		return nil, err
	}
	return bot, nil
}
