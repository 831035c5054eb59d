package services

import (
	"testing"
	"time"

	"typing-duel-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// One in-memory database per connection otherwise.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Game{}, &models.GameHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, authID, nickname string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.NewString(),
		AuthID:   authID,
		Nickname: nickname,
		Status:   models.StatusOnline,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", authID, err)
	}
	return user
}

func queueUser(t *testing.T, db *gorm.DB, user *models.User, queuedAt time.Time) {
	t.Helper()

	token := uuid.NewString()
	err := db.Model(user).Updates(map[string]interface{}{
		"queue_id":  token,
		"queued_at": queuedAt,
		"status":    models.StatusInQueue,
	}).Error
	if err != nil {
		t.Fatalf("queue user %s: %v", user.AuthID, err)
	}
}

func createBot(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	bot, err := NewBotService(db).EnsureBotUser()
	if err != nil {
		t.Fatalf("provision bot: %v", err)
	}
	return bot
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user %s: %v", id, err)
	}
	return &user
}

func reloadGame(t *testing.T, db *gorm.DB, id string) *models.Game {
	t.Helper()

	var game models.Game
	if err := db.First(&game, "id = ?", id).Error; err != nil {
		t.Fatalf("reload game %s: %v", id, err)
	}
	return &game
}
