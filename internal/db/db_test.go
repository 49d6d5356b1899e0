package db

import "testing"

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	database := NewTestDB(t)

	var enabled int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("expected foreign_keys=1, got %d", enabled)
	}
}
