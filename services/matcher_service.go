package services

import (
	"errors"
	"fmt"
	"log"

	"typing-duel-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatcherService drains the waiting pool on a fixed cadence, pairing
// users two by two oldest-first, or handing a lone trailing user to the
// bot match creator.
type MatcherService struct {
	DB  *gorm.DB
	Bot *BotService
}

func NewMatcherService(db *gorm.DB, bot *BotService) *MatcherService {
	return &MatcherService{DB: db, Bot: bot}
}

// RunMatchTick is one scheduler invocation. Every pairing commits as
// its own transaction, so one failed pair never blocks the rest of the
// tick.
func (s *MatcherService) RunMatchTick() {
	var waiting []models.User
	// Both conditions: a queue_id left behind by an earlier tick whose
	// status flip already landed must not re-enter the pool.
	err := s.DB.Where("queue_id IS NOT NULL AND status = ?", models.StatusInQueue).
		Order("queued_at ASC").
		Find(&waiting).Error
	if err != nil {
		log.Printf("[Matcher] DB error reading queue: %v", err)
		return
	}

	if len(waiting) == 0 {
		log.Printf("[Matcher] queue empty, nothing to do")
		return
	}

	for i := 0; i+1 < len(waiting); i += 2 {
		a, b := waiting[i], waiting[i+1]
		if err := s.pairUsers(a, b); err != nil {
			if errors.Is(err, errRaced) {
				log.Printf("[Matcher] skipped pair %s/%s: matched concurrently", a.ID, b.ID)
				continue
			}
			log.Printf("[Matcher] failed to pair %s/%s: %v", a.ID, b.ID, err)
		}
	}

	if len(waiting)%2 == 1 {
		last := waiting[len(waiting)-1]
		settings := GenerateMatchSettings()
		if err := s.Bot.CreateBotMatch(last.ID, settings); err != nil {
			if errors.Is(err, errRaced) {
				log.Printf("[Matcher] skipped bot match for %s: matched concurrently", last.ID)
				return
			}
			log.Printf("[Matcher] failed to create bot match for %s: %v", last.ID, err)
		}
	}
}

// pairUsers creates a Game for two waiting users and flips both of them
// to game_found in one transaction. Each status flip is a conditional
// update re-checked via RowsAffected, so a user snatched by a
// concurrent writer aborts the whole pair cleanly.
func (s *MatcherService) pairUsers(a, b models.User) error {
	settings := GenerateMatchSettings()

	game := models.Game{
		ID:                uuid.NewString(),
		PlayerIDs:         models.StringList{a.ID, b.ID},
		Language:          settings.Language,
		Phrase:            settings.Phrase,
		Words:             settings.Words,
		LettersAndSymbols: settings.LettersAndSymbols,
		Holds:             settings.Holds,
		PlayersAccepted:   models.StringList{},
		Progress:          models.ProgressMap{},
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&game).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		for _, id := range []string{a.ID, b.ID} {
			if err := claimQueuedUser(tx, id, game.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// claimQueuedUser atomically moves a still-waiting user into the given
// game: queue fields cleared, status game_found, active game set. Zero
// rows affected means someone else got there first.
func claimQueuedUser(tx *gorm.DB, userID, gameID string) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND status = ?", userID, models.StatusInQueue).
		Updates(map[string]interface{}{
			"queue_id":       nil,
			"queued_at":      nil,
			"status":         models.StatusGameFound,
			"active_game_id": gameID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errRaced
	}
	return nil
}
