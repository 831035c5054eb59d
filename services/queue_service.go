package services

import (
	"errors"
	"log"
	"time"

	"typing-duel-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueService handles queue membership and the current-match poll.
type QueueService struct {
	DB *gorm.DB
}

func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{DB: db}
}

func (s *QueueService) userByAuthID(authID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "auth_id = ?", authID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Enter puts the user into the waiting pool. The queue token is opaque;
// a client-supplied one is kept, otherwise a fresh one is minted.
func (s *QueueService) Enter(authID, queueToken string) (*models.User, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}
	if user.ActiveGameID != nil {
		return nil, ErrAlreadyInMatch
	}
	if user.QueueID != nil {
		return nil, ErrAlreadyQueued
	}

	if queueToken == "" {
		queueToken = uuid.NewString()
	}
	now := time.Now().UTC()

	updates := map[string]interface{}{
		"queue_id":  queueToken,
		"queued_at": now,
		"status":    models.StatusInQueue,
	}
	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Exit removes the user from the waiting pool. Exiting while not queued
// is harmless: the fields are simply cleared again. A user who was
// already matched is past the queue and must go through reject or
// finish instead; silently resetting them to online would leave the
// active game pointer dangling.
func (s *QueueService) Exit(authID string) (*models.User, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, err
	}
	if user.ActiveGameID != nil {
		return nil, ErrAlreadyInMatch
	}

	updates := map[string]interface{}{
		"queue_id":  nil,
		"queued_at": nil,
		"status":    models.StatusOnline,
	}
	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// OpponentView is the slice of the opponent's record exposed to the
// polling client. For bot matches the cosmetic identity comes off the
// Game, not the shared bot row.
type OpponentView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status,omitempty"`
}

// CurrentMatch returns the caller's active game and opponent, or
// (nil, nil) when the user is not in a match.
func (s *QueueService) CurrentMatch(authID string) (*models.Game, *OpponentView, error) {
	user, err := s.userByAuthID(authID)
	if err != nil {
		return nil, nil, err
	}
	if user.ActiveGameID == nil {
		return nil, nil, nil
	}

	var game models.Game
	if err := s.DB.First(&game, "id = ?", *user.ActiveGameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Queue] user %s points at missing game %s", user.ID, *user.ActiveGameID)
			return nil, nil, nil
		}
		return nil, nil, err
	}

	opponentID := game.OpponentOf(user.ID)
	if opponentID == "" {
		return &game, nil, nil
	}

	var opponent models.User
	if err := s.DB.First(&opponent, "id = ?", opponentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &game, nil, nil
		}
		return nil, nil, err
	}

	view := &OpponentView{
		ID:       opponent.ID,
		Nickname: opponent.Nickname,
		Avatar:   opponent.Avatar,
		Status:   opponent.Status,
	}
	if game.AgainstBot && opponent.IsBot() {
		view.Nickname = game.BotNickname
		view.Avatar = game.BotAvatar
		view.Status = ""
	}
	return &game, view, nil
}

// EnsureUser upserts the User row for a gateway-authenticated identity.
// Called by the login route on every sign-in; the row is created on the
// first one.
func (s *QueueService) EnsureUser(authID, nickname, avatar string) (*models.User, error) {
	user, err := s.userByAuthID(authID)
	if errors.Is(err, ErrUserNotFound) {
		user = &models.User{
			ID:       uuid.NewString(),
			AuthID:   authID,
			Nickname: nickname,
			Avatar:   avatar,
			Status:   models.StatusOnline,
		}
		if err := s.DB.Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if nickname != "" && nickname != user.Nickname {
		updates["nickname"] = nickname
	}
	if avatar != "" && avatar != user.Avatar {
		updates["avatar"] = avatar
	}
	if len(updates) > 0 {
		if err := s.DB.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

// --- fiber handlers ---

// Login upserts the caller's user row.
func (s *QueueService) Login(c *fiber.Ctx) error {
	var req struct {
		Nickname string `json:"nickname"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	authID := c.Locals("user_id").(string)

	user, err := s.EnsureUser(authID, req.Nickname, req.Avatar)
	if err != nil {
		log.Printf("[Queue] login failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// EnterQueue handles POST /queue.
func (s *QueueService) EnterQueue(c *fiber.Ctx) error {
	var req struct {
		QueueToken string `json:"queue_token"`
	}
	// Body is optional; a missing one just means the server mints the token.
	_ = c.BodyParser(&req)
	authID := c.Locals("user_id").(string)

	user, err := s.Enter(authID, req.QueueToken)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyQueued), errors.Is(err, ErrAlreadyInMatch):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Queue] enter failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// ExitQueue handles DELETE /queue.
func (s *QueueService) ExitQueue(c *fiber.Ctx) error {
	authID := c.Locals("user_id").(string)

	user, err := s.Exit(authID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyInMatch):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Queue] exit failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(user)
}

// GetCurrentMatch handles GET /duels/current, the UI poll.
func (s *QueueService) GetCurrentMatch(c *fiber.Ctx) error {
	authID := c.Locals("user_id").(string)

	game, opponent, err := s.CurrentMatch(authID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Printf("[Queue] current-match poll failed for %s: %v", authID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{"game": game, "opponent": opponent})
}
