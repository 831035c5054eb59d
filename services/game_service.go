package services

import (
	"errors"
	"fmt"
	"log"

	"typing-duel-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BotRunner is what the state machine needs from the bot pacing worker.
// Wired in main; nil disables bot pacing (e.g. in tests that drive the
// bot by hand).
type BotRunner interface {
	Start(gameID, botID string)
	Cancel(gameID string)
}

// WinRecorder receives the winner's WPM after a human win. Wired to the
// redis leaderboard in main; nil skips recording.
type WinRecorder interface {
	RecordWin(userID string, wpm float64)
}

// GameService governs the match lifecycle: accept, reject, step
// completion, win resolution, and leaving a finished match.
type GameService struct {
	DB          *gorm.DB
	BotRunner   BotRunner
	WinRecorder WinRecorder
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

func (s *GameService) userByAuthID(authID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "auth_id = ?", authID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func activeGameOf(tx *gorm.DB, user *models.User) (*models.Game, error) {
	if user.ActiveGameID == nil {
		return nil, ErrNoActiveGame
	}
	var game models.Game
	if err := tx.First(&game, "id = ?", *user.ActiveGameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveGame
		}
		return nil, err
	}
	if !game.PlayerIDs.Contains(user.ID) {
		return nil, ErrNotParticipant
	}
	return &game, nil
}

// Accept confirms the caller's side of a found match. Appending to
// PlayersAccepted is idempotent: an already-present caller succeeds
// without duplicating. Once the accepted count reaches two, eligible
// human participants move to in_game together; for bot matches only the
// human has session state, and accepting also starts the bot pacing.
func (s *GameService) Accept(authID string) (*models.Game, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}

	var game *models.Game
	var startBot bool

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		g, err := activeGameOf(tx, user)
		if err != nil {
			return err
		}
		game = g

		if !game.AgainstBot {
			// Opponent sanity check: accepting is pointless if the other
			// side already walked away from this game.
			opponentID := game.OpponentOf(user.ID)
			var opponent models.User
			if err := tx.First(&opponent, "id = ?", opponentID).Error; err != nil {
				return fmt.Errorf("load opponent: %w", err)
			}
			if opponent.Status != models.StatusGameFound ||
				opponent.ActiveGameID == nil || *opponent.ActiveGameID != game.ID {
				return ErrOpponentGone
			}
		}

		if err := appendAccepted(tx, game, user.ID); err != nil {
			return err
		}

		// >= 2 rather than == 2 tolerates any historic duplication.
		if len(game.PlayersAccepted) < 2 {
			return nil
		}

		if game.AgainstBot {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("status", models.StatusInGame).Error; err != nil {
				return err
			}
			startBot = true
			return nil
		}

		// Both humans flip together or not at all.
		return tx.Model(&models.User{}).Where("id IN ?", []string(game.PlayerIDs)).
			Update("status", models.StatusInGame).Error
	})
	if err != nil {
		return nil, err
	}

	if startBot && s.BotRunner != nil {
		botID := game.OpponentOf(user.ID)
		s.BotRunner.Start(game.ID, botID)
	}
	return game, nil
}

// appendAccepted adds playerID to game.PlayersAccepted without losing a
// concurrent accept from the other side. The update only lands when the
// stored list still matches the one we read; on a miss the row is
// reloaded and the append retried against the fresh value. Same idiom
// as claimQueuedUser: a conditional update checked via RowsAffected.
func appendAccepted(tx *gorm.DB, game *models.Game, playerID string) error {
	for attempt := 0; attempt < 3; attempt++ {
		if game.PlayersAccepted.Contains(playerID) {
			return nil
		}
		prev := game.PlayersAccepted
		next := append(append(models.StringList{}, prev...), playerID)

		res := tx.Model(&models.Game{}).
			Where("id = ? AND players_accepted = ?", game.ID, prev).
			Update("players_accepted", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			game.PlayersAccepted = next
			return nil
		}
		if err := tx.First(game, "id = ?", game.ID).Error; err != nil {
			return err
		}
	}
	return errRaced
}

// Reject abandons a found match: the caller goes back online with no
// active game. The Game record itself is untouched; the opponent
// discovers the abandonment through their own accept's sanity check or
// the current-match poll.
func (s *GameService) Reject(authID string) (*models.User, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"active_game_id": nil,
		"status":         models.StatusOnline,
	}
	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CompleteStep merges a step completion for the calling human into the
// game's progress. Completing holds first, while no winner is set and
// an opponent exists, declares the caller winner, archives history, and
// finalizes the game.
func (s *GameService) CompleteStep(authID string, step models.Step, metrics *models.StepMetrics) (*models.Game, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}

	var game *models.Game
	var wonNow bool

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		g, err := activeGameOf(tx, user)
		if err != nil {
			return err
		}
		game = g
		wonNow, err = applyStep(tx, game, user.ID, step, metrics)
		return err
	})
	if err != nil {
		return nil, err
	}

	if wonNow {
		if s.BotRunner != nil && game.AgainstBot {
			s.BotRunner.Cancel(game.ID)
		}
		if s.WinRecorder != nil && metrics != nil && metrics.WPM > 0 {
			s.WinRecorder.RecordWin(user.ID, metrics.WPM)
		}
	}
	return game, nil
}

// CompleteStepForBot is the pacing worker's entry point. A completion
// arriving after the human has already won is absorbed as a no-op so
// late timers can never clobber a decided game.
func (s *GameService) CompleteStepForBot(gameID, botID string, step models.Step, metrics *models.StepMetrics) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			return err
		}
		if game.WinnerID != nil {
			log.Printf("[Game] bot step %s on %s ignored, winner already set", step, gameID)
			return nil
		}
		_, err := applyStep(tx, &game, botID, step, metrics)
		return err
	})
}

// applyStep merges one step result into the game's progress and, on a
// final-step completion, sets the winner and archives history. The
// winner write is conditional on winner_id still being NULL; a
// concurrent winner demotes this call to a plain progress merge.
func applyStep(tx *gorm.DB, game *models.Game, playerID string, step models.Step, metrics *models.StepMetrics) (wonNow bool, err error) {
	game.Progress = game.Progress.Merge(playerID, step, models.StepResult{Done: true, Metrics: metrics})

	opponentID := game.OpponentOf(playerID)
	decides := step == models.StepHolds && game.WinnerID == nil && opponentID != ""

	if decides {
		res := tx.Model(&models.Game{}).
			Where("id = ? AND winner_id IS NULL", game.ID).
			Updates(map[string]interface{}{
				"progress":  game.Progress,
				"winner_id": playerID,
			})
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected > 0 {
			game.WinnerID = &playerID
			return true, archiveGame(tx, game, playerID)
		}
		// Lost the winner race; fall through and keep only the merge.
	}

	return false, tx.Model(game).Update("progress", game.Progress).Error
}

// archiveGame inserts the append-only GameHistory snapshots. Bot
// matches archive only the human side, regardless of which side
// completed the final step.
func archiveGame(tx *gorm.DB, game *models.Game, winnerID string) error {
	participants := []string(game.PlayerIDs)
	if game.AgainstBot {
		var bot models.User
		if err := tx.First(&bot, "auth_id = ?", models.BotAuthID).Error; err != nil {
			return fmt.Errorf("load bot for archive: %w", err)
		}
		participants = game.HumanPlayerIDs(bot.ID)
	}

	for _, userID := range participants {
		row := models.GameHistory{
			ID:                uuid.NewString(),
			UserID:            userID,
			GameID:            game.ID,
			Language:          game.Language,
			Phrase:            game.Phrase,
			Words:             game.Words,
			LettersAndSymbols: game.LettersAndSymbols,
			Holds:             game.Holds,
			Progress:          game.Progress,
			WinnerID:          winnerID,
			AgainstBot:        game.AgainstBot,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("archive history for %s: %w", userID, err)
		}
	}
	return nil
}

// Finish returns the caller to the lobby after the result screen:
// status online, active game cleared, unconditionally. The Game record
// is left as-is.
func (s *GameService) Finish(authID string) (*models.User, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}

	if s.BotRunner != nil && user.ActiveGameID != nil {
		s.BotRunner.Cancel(*user.ActiveGameID)
	}

	updates := map[string]interface{}{
		"active_game_id": nil,
		"status":         models.StatusOnline,
	}
	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BotStepsRemaining reports which steps the bot still owes and whether
// the game is already decided. Used by the pacing worker to restart
// idempotently.
func (s *GameService) BotStepsRemaining(gameID, botID string) ([]models.Step, bool, error) {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		return nil, false, err
	}
	if game.WinnerID != nil {
		return nil, true, nil
	}
	var remaining []models.Step
	for _, step := range models.OrderedSteps {
		if !game.Progress.StepDone(botID, step) {
			remaining = append(remaining, step)
		}
	}
	return remaining, false, nil
}

// --- fiber handlers ---

// AcceptMatch handles POST /duels/accept.
func (s *GameService) AcceptMatch(c *fiber.Ctx) error {
	authID := c.Locals("user_id").(string)

	game, err := s.Accept(authID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoActiveGame), errors.Is(err, ErrNotParticipant), errors.Is(err, ErrOpponentGone):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Game] accept failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(game)
}

// RejectMatch handles POST /duels/reject.
func (s *GameService) RejectMatch(c *fiber.Ctx) error {
	authID := c.Locals("user_id").(string)

	user, err := s.Reject(authID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Game] reject failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// ReportStep handles POST /duels/steps.
func (s *GameService) ReportStep(c *fiber.Ctx) error {
	var req struct {
		Step    string              `json:"step"`
		Metrics *models.StepMetrics `json:"metrics"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	step, err := models.ParseStep(req.Step)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	authID := c.Locals("user_id").(string)

	game, err := s.CompleteStep(authID, step, req.Metrics)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoActiveGame), errors.Is(err, ErrNotParticipant):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Game] step report failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(game)
}

// FinishMatch handles POST /duels/finish.
func (s *GameService) FinishMatch(c *fiber.Ctx) error {
	authID := c.Locals("user_id").(string)

	user, err := s.Finish(authID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Game] finish failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}
