package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestBootstrapStaffOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	password, err := bootstrapStaff(ctx, database, "Staff")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(password) != 16 {
		t.Fatalf("expected a 16 character password, got %q", password)
	}

	user, err := store.GetUserByUsername(ctx, database, "Staff")
	if err != nil || user == nil {
		t.Fatalf("staff user not created: %v", err)
	}
	if user.Role != model.RoleStaff {
		t.Errorf("expected STAFF, got %q", user.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		t.Error("stored hash does not match generated password")
	}

	again, err := bootstrapStaff(ctx, database, "Other")
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if again != "" {
		t.Error("expected no new account once staff exists")
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(24)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := generatePassword(24)
	if len(a) != 24 || a == b {
		t.Errorf("unexpected passwords %q and %q", a, b)
	}
}
