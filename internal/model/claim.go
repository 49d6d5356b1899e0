package model

import (
	"strings"
	"time"
)

// Claim is a request by a user to recover a found item.
type Claim struct {
	ID                     int64         `json:"id"`
	ItemID                 int64         `json:"item_id"`
	ClaimantID             int64         `json:"claimant_id"`
	Answers                []ClaimAnswer `json:"answers"`
	AdditionalDetails      string        `json:"additional_details,omitempty"`
	Status                 string        `json:"status"`
	ReviewedBy             *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt             *time.Time    `json:"reviewed_at,omitempty"`
	ReviewNotes            string        `json:"review_notes,omitempty"`
	PickupCompleted        bool          `json:"pickup_completed"`
	PickupDate             *time.Time    `json:"pickup_date,omitempty"`
	PickupVerificationType string        `json:"pickup_verification_type,omitempty"`
	PickupNotes            string        `json:"pickup_notes,omitempty"`
	ContactEmail           string        `json:"contact_email"`
	ContactPhone           string        `json:"contact_phone"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`

	// Joined fields (not always populated).
	ClaimantUsername string `json:"claimant_username,omitempty"`
	ReviewerUsername string `json:"reviewer_username,omitempty"`
}

// ClaimAnswer is the claimant's answer to one verification question.
type ClaimAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "PENDING"
	ClaimStatusApproved = "APPROVED"
	ClaimStatusDenied   = "DENIED"
)

// ReviewOutcome reports whether status is a valid result of a review.
func ReviewOutcome(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusDenied
}

// Pickup verification types.
const (
	PickupIDChecked          = "ID_CHECKED"
	PickupMatchedDescription = "MATCHED_DESCRIPTION"
	PickupOther              = "OTHER"
)

// ValidPickupVerification reports whether v is a known verification type.
func ValidPickupVerification(v string) bool {
	switch v {
	case PickupIDChecked, PickupMatchedDescription, PickupOther:
		return true
	}
	return false
}

// ClaimInput carries the claimant-supplied fields of a new claim.
type ClaimInput struct {
	ItemID            int64         `json:"item_id"`
	Answers           []ClaimAnswer `json:"answers"`
	AdditionalDetails string        `json:"additional_details"`
	ContactEmail      string        `json:"contact_email"`
	ContactPhone      string        `json:"contact_phone"`
}

// Validate checks the request shape of a new claim.
func (in ClaimInput) Validate() error {
	if in.ItemID <= 0 {
		return NewValidationError("item_id required")
	}
	if strings.TrimSpace(in.ContactEmail) == "" {
		return NewValidationError("contact_email required")
	}
	if strings.TrimSpace(in.ContactPhone) == "" {
		return NewValidationError("contact_phone required")
	}
	return nil
}

// ClaimPatch is a claimant edit of a pending claim. A nil field means the
// field was omitted and keeps its value; a non-nil field is applied as is.
type ClaimPatch struct {
	Answers           *[]ClaimAnswer `json:"answers"`
	AdditionalDetails *string        `json:"additional_details"`
	ContactEmail      *string        `json:"contact_email"`
	ContactPhone      *string        `json:"contact_phone"`
}

// Apply validates the patch and applies it to c.
func (p ClaimPatch) Apply(c *Claim) error {
	if p.ContactEmail != nil && strings.TrimSpace(*p.ContactEmail) == "" {
		return NewValidationError("contact_email must not be empty")
	}
	if p.ContactPhone != nil && strings.TrimSpace(*p.ContactPhone) == "" {
		return NewValidationError("contact_phone must not be empty")
	}

	if p.Answers != nil {
		c.Answers = *p.Answers
	}
	setString(&c.AdditionalDetails, p.AdditionalDetails)
	setString(&c.ContactEmail, p.ContactEmail)
	setString(&c.ContactPhone, p.ContactPhone)
	return nil
}

// ItemSummary is the slice of an item shown next to a claim in listings.
// Public fields are only filled for the claimant's own listing.
type ItemSummary struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	LocationFound     string    `json:"location_found"`
	DateFound         time.Time `json:"date_found"`
	PublicDescription string    `json:"public_description,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
}

// ClaimListEntry is one row of a claim listing.
type ClaimListEntry struct {
	Claim
	Item ItemSummary `json:"item"`
}

// ClaimDetail is a single claim with its item rendered for the viewer:
// Item holds a StaffItemView for staff and a PublicItemView otherwise.
type ClaimDetail struct {
	Claim
	Item any `json:"item"`
}
