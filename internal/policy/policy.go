// Package policy holds every authorization rule of the service. Each rule is
// a pure predicate over the caller identity and, where ownership matters,
// the target claim. Unknown roles are denied.
package policy

import "github.com/erazemk/najdeno/internal/model"

// Identity is the verified caller of a request.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// IsStaff reports whether id carries the staff role.
func (id Identity) IsStaff() bool {
	return id.Role == model.RoleStaff
}

// Authenticated reports whether id names a user with a known role.
func (id Identity) Authenticated() bool {
	return id.UserID > 0 && model.ValidRole(id.Role)
}

func (id Identity) owns(c *model.Claim) bool {
	return c != nil && id.UserID > 0 && id.UserID == c.ClaimantID
}

// CanCreateItem reports whether id may register found items.
func CanCreateItem(id Identity) bool { return id.IsStaff() }

// CanModifyItem reports whether id may edit, delete or photograph items.
func CanModifyItem(id Identity) bool { return id.IsStaff() }

// CanViewStaffItem reports whether id may see private notes and answers.
func CanViewStaffItem(id Identity) bool { return id.IsStaff() }

// CanCreateClaim reports whether id may file a claim. Any authenticated
// identity may.
func CanCreateClaim(id Identity) bool { return id.Authenticated() }

// CanEditClaimFields reports whether id may change the claimant fields of c.
// Only the claimant may, staff included.
func CanEditClaimFields(id Identity, c *model.Claim) bool { return id.owns(c) }

// CanReviewClaim reports whether id may approve or deny claims.
func CanReviewClaim(id Identity) bool { return id.IsStaff() }

// CanMarkPickup reports whether id may record a pickup.
func CanMarkPickup(id Identity) bool { return id.IsStaff() }

// CanDeleteClaim reports whether id may delete c.
func CanDeleteClaim(id Identity, c *model.Claim) bool { return id.IsStaff() || id.owns(c) }

// CanViewClaim reports whether id may read c.
func CanViewClaim(id Identity, c *model.Claim) bool { return id.IsStaff() || id.owns(c) }

// CanManageUsers reports whether id may list and create accounts.
func CanManageUsers(id Identity) bool { return id.IsStaff() }
