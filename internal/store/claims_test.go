package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

type claimFixture struct {
	db       *sql.DB
	staff    *model.User
	visitor  *model.User
	item     *model.FoundItem
	reviewAt time.Time
}

func newClaimFixture(t *testing.T) claimFixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	staff := createStaff(t, database, "staff")
	visitor, err := CreateUser(ctx, database, "visitor", "hash", model.RoleVisitor)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	item, err := CreateItem(ctx, database, itemInput("Phone"), staff.ID)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return claimFixture{
		db:       database,
		staff:    staff,
		visitor:  visitor,
		item:     item,
		reviewAt: time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC),
	}
}

func (f claimFixture) claim(t *testing.T) *model.Claim {
	t.Helper()
	c, err := CreateClaim(context.Background(), f.db, f.visitor.ID, model.ClaimInput{
		ItemID:       f.item.ID,
		Answers:      []model.ClaimAnswer{{Question: "What is the lock screen?", Answer: "My cat"}},
		ContactEmail: "v@example.com",
		ContactPhone: "555-0100",
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	return c
}

func TestCreateClaim(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	if c.Status != model.ClaimStatusPending {
		t.Errorf("expected PENDING, got %q", c.Status)
	}
	if c.ClaimantUsername != "visitor" {
		t.Errorf("expected claimant username 'visitor', got %q", c.ClaimantUsername)
	}
	if c.PickupCompleted {
		t.Error("expected pickup not completed")
	}
	if len(c.Answers) != 1 || c.Answers[0].Answer != "My cat" {
		t.Errorf("unexpected answers %+v", c.Answers)
	}

	item, _ := GetItem(ctx, f.db, f.item.ID)
	if len(item.Claims) != 1 || item.Claims[0] != c.ID {
		t.Errorf("expected item claims [%d], got %v", c.ID, item.Claims)
	}
}

func TestCreateClaimUnavailableItem(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	in := model.ClaimInput{ItemID: 9999, ContactEmail: "a@b.c", ContactPhone: "1"}
	if _, err := CreateClaim(ctx, f.db, f.visitor.ID, in); !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not found for unknown item, got %v", err)
	}

	f.item.Status = model.ItemStatusDonated
	UpdateItem(ctx, f.db, f.item, model.ItemStatusFound)
	in.ItemID = f.item.ID
	if _, err := CreateClaim(ctx, f.db, f.visitor.ID, in); !model.IsKind(err, model.KindInvalidState) {
		t.Errorf("expected invalid state for donated item, got %v", err)
	}

	f.item.Status = model.ItemStatusFound
	UpdateItem(ctx, f.db, f.item, model.ItemStatusDonated)
	DeleteItem(ctx, f.db, f.item.ID)
	if _, err := CreateClaim(ctx, f.db, f.visitor.ID, in); !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not found for deleted item, got %v", err)
	}
}

func TestListClaims(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	other, _ := CreateUser(ctx, f.db, "other", "hash", model.RoleVisitor)
	first := f.claim(t)
	CreateClaim(ctx, f.db, other.ID, model.ClaimInput{
		ItemID: f.item.ID, ContactEmail: "o@example.com", ContactPhone: "555-0199",
	})

	all, err := ListClaims(ctx, f.db, 0)
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(all))
	}
	if all[0].ClaimantID != other.ID {
		t.Errorf("expected newest claim first, got claimant %d", all[0].ClaimantID)
	}
	if all[1].Item.Title != "Phone" || all[1].Item.LocationFound != "Library" {
		t.Errorf("expected item summary, got %+v", all[1].Item)
	}

	mine, _ := ListClaims(ctx, f.db, f.visitor.ID)
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Errorf("expected only the visitor's claim, got %+v", mine)
	}
	if len(mine[0].Answers) != 1 {
		t.Errorf("expected answers loaded, got %+v", mine[0].Answers)
	}
}

func TestUpdateClaimFieldsOnlyWhilePending(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	c.ContactPhone = "555-0111"
	c.Answers = []model.ClaimAnswer{{Question: "Case color?", Answer: "Red"}}
	if err := UpdateClaimFields(ctx, f.db, c); err != nil {
		t.Fatalf("UpdateClaimFields: %v", err)
	}

	got, _ := GetClaim(ctx, f.db, c.ID)
	if got.ContactPhone != "555-0111" {
		t.Errorf("expected updated phone, got %q", got.ContactPhone)
	}
	if len(got.Answers) != 1 || got.Answers[0].Question != "Case color?" {
		t.Errorf("expected replaced answers, got %+v", got.Answers)
	}

	ReviewClaim(ctx, f.db, c.ID, f.staff.ID, model.ClaimStatusDenied, "", f.reviewAt)
	if err := UpdateClaimFields(ctx, f.db, c); !model.IsKind(err, model.KindInvalidState) {
		t.Errorf("expected invalid state after review, got %v", err)
	}

	c.ID = 9999
	if err := UpdateClaimFields(ctx, f.db, c); !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestReviewClaimApproveClaimsItem(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	if err := ReviewClaim(ctx, f.db, c.ID, f.staff.ID, model.ClaimStatusApproved, "matches", f.reviewAt); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}

	got, _ := GetClaim(ctx, f.db, c.ID)
	if got.Status != model.ClaimStatusApproved {
		t.Errorf("expected APPROVED, got %q", got.Status)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != f.staff.ID {
		t.Errorf("expected reviewed_by %d, got %v", f.staff.ID, got.ReviewedBy)
	}
	if got.ReviewedAt == nil || !got.ReviewedAt.Equal(f.reviewAt) {
		t.Errorf("expected reviewed_at %v, got %v", f.reviewAt, got.ReviewedAt)
	}
	if got.ReviewerUsername != "staff" {
		t.Errorf("expected reviewer username 'staff', got %q", got.ReviewerUsername)
	}

	item, _ := GetItem(ctx, f.db, f.item.ID)
	if item.Status != model.ItemStatusClaimed {
		t.Errorf("expected item CLAIMED, got %q", item.Status)
	}

	err := ReviewClaim(ctx, f.db, c.ID, f.staff.ID, model.ClaimStatusDenied, "", f.reviewAt)
	if !model.IsKind(err, model.KindInvalidState) {
		t.Errorf("expected invalid state on second review, got %v", err)
	}
}

func TestReviewClaimDenyLeavesItem(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	if err := ReviewClaim(ctx, f.db, c.ID, f.staff.ID, model.ClaimStatusDenied, "wrong answers", f.reviewAt); err != nil {
		t.Fatalf("ReviewClaim: %v", err)
	}

	item, _ := GetItem(ctx, f.db, f.item.ID)
	if item.Status != model.ItemStatusFound {
		t.Errorf("expected item to stay FOUND, got %q", item.Status)
	}

	err := ReviewClaim(ctx, f.db, 9999, f.staff.ID, model.ClaimStatusDenied, "", f.reviewAt)
	if !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMarkPickup(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	err := MarkPickup(ctx, f.db, c.ID, model.PickupIDChecked, "", f.reviewAt)
	if !model.IsKind(err, model.KindInvalidState) {
		t.Errorf("expected invalid state for pending claim, got %v", err)
	}

	ReviewClaim(ctx, f.db, c.ID, f.staff.ID, model.ClaimStatusApproved, "", f.reviewAt)
	pickupAt := f.reviewAt.Add(24 * time.Hour)
	if err := MarkPickup(ctx, f.db, c.ID, model.PickupIDChecked, "passport", pickupAt); err != nil {
		t.Fatalf("MarkPickup: %v", err)
	}

	got, _ := GetClaim(ctx, f.db, c.ID)
	if !got.PickupCompleted {
		t.Error("expected pickup completed")
	}
	if got.PickupDate == nil || !got.PickupDate.Equal(pickupAt) {
		t.Errorf("expected pickup date %v, got %v", pickupAt, got.PickupDate)
	}
	if got.PickupVerificationType != model.PickupIDChecked || got.PickupNotes != "passport" {
		t.Errorf("unexpected pickup fields %q %q", got.PickupVerificationType, got.PickupNotes)
	}

	err = MarkPickup(ctx, f.db, c.ID, model.PickupOther, "", pickupAt)
	if !model.IsKind(err, model.KindInvalidState) {
		t.Errorf("expected invalid state for repeated pickup, got %v", err)
	}

	err = MarkPickup(ctx, f.db, 9999, model.PickupOther, "", pickupAt)
	if !model.IsKind(err, model.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteClaim(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	c := f.claim(t)
	ok, err := DeleteClaim(ctx, f.db, c.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteClaim: %v %v", ok, err)
	}

	if got, _ := GetClaim(ctx, f.db, c.ID); got != nil {
		t.Error("expected claim to be gone")
	}
	item, _ := GetItem(ctx, f.db, f.item.ID)
	if len(item.Claims) != 0 {
		t.Errorf("expected item claims to be empty, got %v", item.Claims)
	}

	if ok, _ := DeleteClaim(ctx, f.db, c.ID); ok {
		t.Error("expected second delete to report nothing deleted")
	}
}
