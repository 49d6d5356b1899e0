package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/cache"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/policy"
	"github.com/erazemk/najdeno/internal/store"
)

var fixedNow = time.Date(2026, 4, 2, 15, 4, 5, 0, time.UTC)

type fixture struct {
	svc      *Service
	staff    policy.Identity
	visitor  policy.Identity
	visitor2 policy.Identity
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, c *cache.Cache) fixture {
	t.Helper()
	database := db.NewTestDB(t)
	svc := New(database, c)
	svc.Now = func() time.Time { return fixedNow }

	ident := func(name, role string) policy.Identity {
		u, err := store.CreateUser(context.Background(), database, name, "hash", role)
		require.NoError(t, err)
		return policy.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
	}

	return fixture{
		svc:      svc,
		staff:    ident("s1", model.RoleStaff),
		visitor:  ident("v1", model.RoleVisitor),
		visitor2: ident("v2", model.RoleVisitor),
	}
}

func newItemInput(title string) model.ItemInput {
	return model.ItemInput{
		Title:             title,
		Category:          "Electronics",
		PublicDescription: "Black " + title,
		PrivateNotes:      "sticker under the battery",
		DateFound:         time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
		LocationFound:     "Cafeteria",
		StorageLocation:   "Drawer 3",
		VerificationQuestions: []model.VerificationQuestion{
			{Question: "What is engraved on the back?", Answer: "JD"},
		},
	}
}

func (f fixture) item(t *testing.T, title string) *model.StaffItemView {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), f.staff, newItemInput(title))
	require.NoError(t, err)
	return item
}

func (f fixture) claim(t *testing.T, who policy.Identity, itemID int64) *model.Claim {
	t.Helper()
	c, err := f.svc.CreateClaim(context.Background(), who, model.ClaimInput{
		ItemID:       itemID,
		Answers:      []model.ClaimAnswer{{Question: "What is engraved on the back?", Answer: "JD"}},
		ContactEmail: "a@b.com",
		ContactPhone: "555-1",
	})
	require.NoError(t, err)
	return c
}

func assertKind(t *testing.T, err error, kind model.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, model.KindOf(err), "error: %v", err)
}

func strPtr(s string) *string { return &s }

func newMiniredisCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client, time.Minute), mr
}
