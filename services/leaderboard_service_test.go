package services

import (
	"testing"
)

func TestNicknamesByIDBatchesLookups(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "auth-a", "Alice")
	b := createUser(t, db, "auth-b", "Bruno")

	got, err := nicknamesByID(db, []string{a.ID, b.ID, "missing-id"})
	if err != nil {
		t.Fatalf("nicknamesByID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved %d names, want 2: %v", len(got), got)
	}
	if got[a.ID] != "Alice" || got[b.ID] != "Bruno" {
		t.Errorf("names = %v", got)
	}
	if _, ok := got["missing-id"]; ok {
		t.Error("unknown id must be absent from the map")
	}
}

func TestNicknamesByIDEmpty(t *testing.T) {
	db := newTestDB(t)

	got, err := nicknamesByID(db, nil)
	if err != nil {
		t.Fatalf("nicknamesByID: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("map = %v, want empty", got)
	}
}
