package service

import (
	"context"
	"log/slog"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/policy"
	"github.com/erazemk/najdeno/internal/store"
)

// CreateClaim files a PENDING claim by the caller against a FOUND item.
func (s *Service) CreateClaim(ctx context.Context, id policy.Identity, in model.ClaimInput) (*model.Claim, error) {
	if !policy.CanCreateClaim(id) {
		return nil, unauthenticated()
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c, err := store.CreateClaim(ctx, s.db, id.UserID, in)
	if err != nil {
		return nil, storageError(err)
	}

	metrics.ClaimTransitions.WithLabelValues(metrics.TransitionCreated).Inc()
	slog.Info("claim filed", "user", id.Username, "claim_id", c.ID, "item_id", c.ItemID)
	return c, nil
}

// UpdateClaim lets the claimant change their answers, details and contact
// information while the claim is PENDING.
func (s *Service) UpdateClaim(ctx context.Context, id policy.Identity, claimID int64, patch model.ClaimPatch) (*model.Claim, error) {
	c, err := s.claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditClaimFields(id, c) {
		return nil, deny("update_claim", "only the claimant can edit a claim")
	}
	if c.Status != model.ClaimStatusPending {
		return nil, model.NewInvalidStateError("can only edit pending claims")
	}
	if err := patch.Apply(c); err != nil {
		return nil, err
	}

	if err := store.UpdateClaimFields(ctx, s.db, c); err != nil {
		return nil, storageError(err)
	}

	slog.Info("claim updated", "user", id.Username, "claim_id", claimID)
	return s.claim(ctx, claimID)
}

// ReviewClaim approves or denies a PENDING claim. Approval marks the item
// CLAIMED atomically with the claim.
func (s *Service) ReviewClaim(ctx context.Context, id policy.Identity, claimID int64, status, notes string) (*model.Claim, error) {
	if !policy.CanReviewClaim(id) {
		return nil, deny("review_claim", "only staff can review claims")
	}
	c, err := s.claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !model.ReviewOutcome(status) {
		return nil, model.NewValidationError("status must be APPROVED or DENIED")
	}
	if c.Status != model.ClaimStatusPending {
		return nil, model.NewInvalidStateError("claim has already been reviewed")
	}

	if err := store.ReviewClaim(ctx, s.db, claimID, id.UserID, status, notes, s.now()); err != nil {
		return nil, storageError(err)
	}

	if status == model.ClaimStatusApproved {
		s.cache.Invalidate(ctx)
		metrics.ClaimTransitions.WithLabelValues(metrics.TransitionApproved).Inc()
	} else {
		metrics.ClaimTransitions.WithLabelValues(metrics.TransitionDenied).Inc()
	}
	slog.Info("claim reviewed", "user", id.Username, "claim_id", claimID, "item_id", c.ItemID, "status", status)
	return s.claim(ctx, claimID)
}

// MarkPickup records that the owner collected the item of an APPROVED claim.
// A claim can only be picked up once.
func (s *Service) MarkPickup(ctx context.Context, id policy.Identity, claimID int64, verification, notes string) (*model.Claim, error) {
	if !policy.CanMarkPickup(id) {
		return nil, deny("mark_pickup", "only staff can record pickups")
	}
	c, err := s.claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !model.ValidPickupVerification(verification) {
		return nil, model.NewValidationError("pickup_verification_type must be ID_CHECKED, MATCHED_DESCRIPTION or OTHER")
	}
	if c.PickupCompleted {
		return nil, model.NewInvalidStateError("pickup already completed")
	}
	if c.Status != model.ClaimStatusApproved {
		return nil, model.NewInvalidStateError("only approved claims can be picked up")
	}

	if err := store.MarkPickup(ctx, s.db, claimID, verification, notes, s.now()); err != nil {
		return nil, storageError(err)
	}

	metrics.ClaimTransitions.WithLabelValues(metrics.TransitionPickedUp).Inc()
	slog.Info("claim picked up", "user", id.Username, "claim_id", claimID, "item_id", c.ItemID, "verification", verification)
	return s.claim(ctx, claimID)
}

// DeleteClaim removes a claim. Staff may delete any claim, visitors their own.
func (s *Service) DeleteClaim(ctx context.Context, id policy.Identity, claimID int64) error {
	c, err := s.claim(ctx, claimID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteClaim(id, c) {
		return deny("delete_claim", "not allowed to delete this claim")
	}

	ok, err := store.DeleteClaim(ctx, s.db, claimID)
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return model.NewNotFoundError("claim")
	}

	metrics.ClaimTransitions.WithLabelValues(metrics.TransitionDeleted).Inc()
	slog.Info("claim deleted", "user", id.Username, "claim_id", claimID, "item_id", c.ItemID)
	return nil
}

// ListClaims returns every claim for staff and the caller's own claims for
// visitors, newest first. Visitors also get the public description and image
// of each item.
func (s *Service) ListClaims(ctx context.Context, id policy.Identity) ([]model.ClaimListEntry, error) {
	if !id.Authenticated() {
		return nil, unauthenticated()
	}

	var claimant int64
	if !id.IsStaff() {
		claimant = id.UserID
	}

	entries, err := store.ListClaims(ctx, s.db, claimant)
	if err != nil {
		return nil, storageError(err)
	}
	if entries == nil {
		entries = []model.ClaimListEntry{}
	}
	if id.IsStaff() {
		for i := range entries {
			entries[i].Item.PublicDescription = ""
			entries[i].Item.ImageURL = ""
		}
	}
	return entries, nil
}

// GetClaim returns a claim with its item rendered for the caller: the staff
// view for staff, the public detail for the claimant.
func (s *Service) GetClaim(ctx context.Context, id policy.Identity, claimID int64) (*model.ClaimDetail, error) {
	if !id.Authenticated() {
		return nil, unauthenticated()
	}
	c, err := s.claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewClaim(id, c) {
		return nil, deny("get_claim", "not allowed to view this claim")
	}

	item, err := store.GetItem(ctx, s.db, c.ItemID)
	if err != nil {
		return nil, storageError(err)
	}
	if item == nil {
		return nil, model.NewNotFoundError("item")
	}

	detail := &model.ClaimDetail{Claim: *c}
	if policy.CanViewStaffItem(id) {
		detail.Item = item.StaffView()
	} else {
		detail.Item = item.PublicDetail()
	}
	return detail, nil
}

func (s *Service) claim(ctx context.Context, claimID int64) (*model.Claim, error) {
	c, err := store.GetClaim(ctx, s.db, claimID)
	if err != nil {
		return nil, storageError(err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("claim")
	}
	return c, nil
}
