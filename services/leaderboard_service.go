package services

import (
	"context"
	"log"
	"time"

	"typing-duel-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leaderboardWPMKey = "leaderboard:wpm"

// LeaderboardService keeps a best-winning-WPM board on a redis sorted
// set. Purely cosmetic: a nil redis client turns every call into a
// no-op, and recording failures never block match flow.
type LeaderboardService struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, RDB: rdb}
}

// RecordWin stores a winner's WPM, keeping only the user's best score.
func (s *LeaderboardService) RecordWin(userID string, wpm float64) {
	if s.RDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.RDB.ZAddGT(ctx, leaderboardWPMKey, redis.Z{
		Score:  wpm,
		Member: userID,
	}).Err()
	if err != nil {
		log.Printf("[Leaderboard] failed to record win for %s: %v", userID, err)
	}
}

// TopEntry is one leaderboard row returned to the client.
type TopEntry struct {
	UserID   string  `json:"user_id"`
	Nickname string  `json:"nickname"`
	WPM      float64 `json:"wpm"`
	Rank     int     `json:"rank"`
}

// Top returns the best winning WPM scores, highest first.
func (s *LeaderboardService) Top(ctx context.Context, limit int64) ([]TopEntry, error) {
	if s.RDB == nil {
		return []TopEntry{}, nil
	}

	scores, err := s.RDB.ZRevRangeWithScores(ctx, leaderboardWPMKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(scores))
	for _, z := range scores {
		if userID, ok := z.Member.(string); ok {
			ids = append(ids, userID)
		}
	}
	nicknames, err := nicknamesByID(s.DB, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]TopEntry, 0, len(scores))
	for i, z := range scores {
		userID, _ := z.Member.(string)
		entries = append(entries, TopEntry{
			UserID:   userID,
			Nickname: nicknames[userID],
			WPM:      z.Score,
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// nicknamesByID resolves display names for a page of leaderboard rows
// in one query. IDs with no matching user are simply absent from the
// map; the entry then renders with an empty nickname.
func nicknamesByID(db *gorm.DB, ids []string) (map[string]string, error) {
	nicknames := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return nicknames, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		nicknames[u.ID] = u.Nickname
	}
	return nicknames, nil
}

// GetTopWPM handles GET /leaderboard/wpm.
func (s *LeaderboardService) GetTopWPM(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, err := s.Top(c.Context(), limit)
	if err != nil {
		log.Printf("[Leaderboard] failed to read top scores: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "leaderboard unavailable"})
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}
