package services

import (
	"errors"
	"testing"
	"time"

	"typing-duel-system/models"
)

func TestRunMatchTickPairsTwoUsersFIFO(t *testing.T) {
	db := newTestDB(t)
	matcher := NewMatcherService(db, NewBotService(db))

	base := time.Now().UTC()
	a := createUser(t, db, "auth-a", "Alice")
	b := createUser(t, db, "auth-b", "Bruno")
	queueUser(t, db, a, base.Add(1*time.Second))
	queueUser(t, db, b, base.Add(2*time.Second))

	matcher.RunMatchTick()

	var games []models.Game
	if err := db.Find(&games).Error; err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	game := games[0]
	if !game.PlayerIDs.Contains(a.ID) || !game.PlayerIDs.Contains(b.ID) {
		t.Fatalf("game players = %v, want %s and %s", game.PlayerIDs, a.ID, b.ID)
	}
	if game.AgainstBot {
		t.Fatal("two-human pairing must not be a bot match")
	}
	if len(game.PlayersAccepted) != 0 {
		t.Fatalf("fresh game should have no acceptances, got %v", game.PlayersAccepted)
	}

	for _, u := range []*models.User{a, b} {
		got := reloadUser(t, db, u.ID)
		if got.Status != models.StatusGameFound {
			t.Errorf("user %s status = %q, want %q", u.AuthID, got.Status, models.StatusGameFound)
		}
		if got.QueueID != nil || got.QueuedAt != nil {
			t.Errorf("user %s queue fields not cleared", u.AuthID)
		}
		if got.ActiveGameID == nil || *got.ActiveGameID != game.ID {
			t.Errorf("user %s active game not set to %s", u.AuthID, game.ID)
		}
	}
}

func TestRunMatchTickPairsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	matcher := NewMatcherService(db, NewBotService(db))

	base := time.Now().UTC()
	var users []*models.User
	for i, name := range []string{"u1", "u2", "u3", "u4"} {
		u := createUser(t, db, name, name)
		queueUser(t, db, u, base.Add(time.Duration(i)*time.Minute))
		users = append(users, u)
	}

	matcher.RunMatchTick()

	g1 := reloadUser(t, db, users[0].ID).ActiveGameID
	g2 := reloadUser(t, db, users[1].ID).ActiveGameID
	g3 := reloadUser(t, db, users[2].ID).ActiveGameID
	g4 := reloadUser(t, db, users[3].ID).ActiveGameID

	if g1 == nil || g2 == nil || g3 == nil || g4 == nil {
		t.Fatal("all four users should be matched")
	}
	if *g1 != *g2 {
		t.Errorf("oldest two users split across games %s and %s", *g1, *g2)
	}
	if *g3 != *g4 {
		t.Errorf("newest two users split across games %s and %s", *g3, *g4)
	}
	if *g1 == *g3 {
		t.Error("expected two distinct games")
	}
}

func TestRunMatchTickOddUserGetsBotMatch(t *testing.T) {
	db := newTestDB(t)
	bot := createBot(t, db)
	matcher := NewMatcherService(db, NewBotService(db))

	c := createUser(t, db, "auth-c", "Cleo")
	queueUser(t, db, c, time.Now().UTC())

	matcher.RunMatchTick()

	got := reloadUser(t, db, c.ID)
	if got.ActiveGameID == nil {
		t.Fatal("lone user should have been given a bot match")
	}
	game := reloadGame(t, db, *got.ActiveGameID)
	if !game.AgainstBot {
		t.Error("game should be flagged againstBot")
	}
	if !game.PlayersAccepted.Contains(bot.ID) {
		t.Errorf("bot %s should be pre-accepted, got %v", bot.ID, game.PlayersAccepted)
	}
	if game.BotNickname == "" {
		t.Error("bot match should carry a per-match nickname")
	}
	if got.Status != models.StatusGameFound {
		t.Errorf("user status = %q, want %q", got.Status, models.StatusGameFound)
	}
}

func TestRunMatchTickMissingBotLeavesUserQueued(t *testing.T) {
	db := newTestDB(t)
	matcher := NewMatcherService(db, NewBotService(db))

	c := createUser(t, db, "auth-c", "Cleo")
	queueUser(t, db, c, time.Now().UTC())

	// No bot row provisioned: the bot-match unit of work fails, but the
	// user must stay queued for the next tick.
	matcher.RunMatchTick()

	got := reloadUser(t, db, c.ID)
	if got.Status != models.StatusInQueue {
		t.Errorf("user status = %q, want %q", got.Status, models.StatusInQueue)
	}
	if got.QueueID == nil {
		t.Error("queue token must survive a failed bot-match attempt")
	}
	if got.ActiveGameID != nil {
		t.Error("no game should have been assigned")
	}
}

func TestClaimQueuedUserDetectsRace(t *testing.T) {
	db := newTestDB(t)

	u := createUser(t, db, "auth-r", "Racer")
	queueUser(t, db, u, time.Now().UTC())

	// Simulate a concurrent writer grabbing the user first.
	if err := db.Model(u).Update("status", models.StatusInGame).Error; err != nil {
		t.Fatalf("flip status: %v", err)
	}

	err := claimQueuedUser(db, u.ID, "some-game")
	if !errors.Is(err, errRaced) {
		t.Fatalf("expected errRaced, got %v", err)
	}

	got := reloadUser(t, db, u.ID)
	if got.ActiveGameID != nil {
		t.Error("raced claim must not mutate the user")
	}
}

func TestPairUsersRollsBackWhenOneUserRaces(t *testing.T) {
	db := newTestDB(t)
	matcher := NewMatcherService(db, NewBotService(db))

	base := time.Now().UTC()
	a := createUser(t, db, "auth-a", "Alice")
	b := createUser(t, db, "auth-b", "Bruno")
	queueUser(t, db, a, base)
	queueUser(t, db, b, base.Add(time.Second))

	// b was matched by someone else between read and write.
	if err := db.Model(b).Update("status", models.StatusGameFound).Error; err != nil {
		t.Fatalf("flip status: %v", err)
	}

	if err := matcher.pairUsers(*a, *b); !errors.Is(err, errRaced) {
		t.Fatalf("expected errRaced, got %v", err)
	}

	// Nothing may survive the rollback: no game, a untouched.
	var count int64
	db.Model(&models.Game{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no games after rollback, got %d", count)
	}
	gotA := reloadUser(t, db, a.ID)
	if gotA.Status != models.StatusInQueue || gotA.ActiveGameID != nil {
		t.Error("first user must remain queued after partial-pair rollback")
	}
}
