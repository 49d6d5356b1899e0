package model

import "time"

// FoundItem is a physical object logged by staff after it was found.
type FoundItem struct {
	ID                    int64                  `json:"id"`
	Title                 string                 `json:"title"`
	Category              string                 `json:"category"`
	Color                 string                 `json:"color,omitempty"`
	PublicDescription     string                 `json:"public_description"`
	PrivateNotes          string                 `json:"private_notes,omitempty"`
	DateFound             time.Time              `json:"date_found"`
	LocationFound         string                 `json:"location_found"`
	StorageLocation       string                 `json:"storage_location,omitempty"`
	RequiresIDForPickup   bool                   `json:"requires_id_for_pickup"`
	Status                string                 `json:"status"`
	VerificationQuestions []VerificationQuestion `json:"verification_questions"`
	ImageURL              string                 `json:"image_url,omitempty"`
	CreatedBy             int64                  `json:"created_by"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	DeletedAt             *time.Time             `json:"deleted_at,omitempty"`

	// Claims holds the ids of claims filed against the item. It is derived
	// from the claims table on read and never written directly.
	Claims []int64 `json:"claims"`
}

// VerificationQuestion is a staff-authored question whose answer only staff
// may see.
type VerificationQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Item statuses.
const (
	ItemStatusFound    = "FOUND"
	ItemStatusClaimed  = "CLAIMED"
	ItemStatusDonated  = "DONATED"
	ItemStatusDisposed = "DISPOSED"
)

// ValidItemStatus reports whether status is a known item status.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusFound, ItemStatusClaimed, ItemStatusDonated, ItemStatusDisposed:
		return true
	}
	return false
}

// EditableItemStatus reports whether staff may set status through an item
// edit. CLAIMED is only reachable by approving a claim.
func EditableItemStatus(status string) bool {
	return ValidItemStatus(status) && status != ItemStatusClaimed
}

// ItemInput carries the fields staff provide when registering an item.
type ItemInput struct {
	Title                 string                 `json:"title"`
	Category              string                 `json:"category"`
	Color                 string                 `json:"color"`
	PublicDescription     string                 `json:"public_description"`
	PrivateNotes          string                 `json:"private_notes"`
	DateFound             time.Time              `json:"date_found"`
	LocationFound         string                 `json:"location_found"`
	StorageLocation       string                 `json:"storage_location"`
	RequiresIDForPickup   bool                   `json:"requires_id_for_pickup"`
	VerificationQuestions []VerificationQuestion `json:"verification_questions"`
	ImageURL              string                 `json:"image_url"`
}

// Validate checks that all required item fields are present.
func (in ItemInput) Validate() error {
	switch {
	case in.Title == "":
		return NewValidationError("title required")
	case in.Category == "":
		return NewValidationError("category required")
	case in.PublicDescription == "":
		return NewValidationError("public_description required")
	case in.DateFound.IsZero():
		return NewValidationError("date_found required")
	case in.LocationFound == "":
		return NewValidationError("location_found required")
	}
	for _, q := range in.VerificationQuestions {
		if q.Question == "" {
			return NewValidationError("verification questions must not be empty")
		}
	}
	return nil
}

// ItemPatch is a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Title                 *string                 `json:"title"`
	Category              *string                 `json:"category"`
	Color                 *string                 `json:"color"`
	PublicDescription     *string                 `json:"public_description"`
	PrivateNotes          *string                 `json:"private_notes"`
	DateFound             *time.Time              `json:"date_found"`
	LocationFound         *string                 `json:"location_found"`
	StorageLocation       *string                 `json:"storage_location"`
	RequiresIDForPickup   *bool                   `json:"requires_id_for_pickup"`
	Status                *string                 `json:"status"`
	VerificationQuestions *[]VerificationQuestion `json:"verification_questions"`
	ImageURL              *string                 `json:"image_url"`
}

// Apply validates the patch and applies it to item.
func (p ItemPatch) Apply(item *FoundItem) error {
	if p.Status != nil && !EditableItemStatus(*p.Status) {
		return NewValidationError("status must be FOUND, DONATED or DISPOSED")
	}

	required := []struct {
		value *string
		name  string
	}{
		{p.Title, "title"},
		{p.Category, "category"},
		{p.PublicDescription, "public_description"},
		{p.LocationFound, "location_found"},
	}
	for _, f := range required {
		if f.value != nil && *f.value == "" {
			return NewValidationError(f.name + " must not be empty")
		}
	}
	if p.DateFound != nil && p.DateFound.IsZero() {
		return NewValidationError("date_found must not be empty")
	}
	if p.VerificationQuestions != nil {
		for _, q := range *p.VerificationQuestions {
			if q.Question == "" {
				return NewValidationError("verification questions must not be empty")
			}
		}
	}

	setString(&item.Title, p.Title)
	setString(&item.Category, p.Category)
	setString(&item.Color, p.Color)
	setString(&item.PublicDescription, p.PublicDescription)
	setString(&item.PrivateNotes, p.PrivateNotes)
	setString(&item.LocationFound, p.LocationFound)
	setString(&item.StorageLocation, p.StorageLocation)
	setString(&item.Status, p.Status)
	setString(&item.ImageURL, p.ImageURL)
	if p.DateFound != nil {
		item.DateFound = *p.DateFound
	}
	if p.RequiresIDForPickup != nil {
		item.RequiresIDForPickup = *p.RequiresIDForPickup
	}
	if p.VerificationQuestions != nil {
		item.VerificationQuestions = *p.VerificationQuestions
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// PublicQuestion is a verification question with its answer withheld.
type PublicQuestion struct {
	Question string `json:"question"`
}

// PublicItemView is what anonymous visitors may see of an item.
type PublicItemView struct {
	ID                    int64            `json:"id"`
	Title                 string           `json:"title"`
	Category              string           `json:"category"`
	Color                 string           `json:"color,omitempty"`
	PublicDescription     string           `json:"public_description"`
	DateFound             time.Time        `json:"date_found"`
	LocationFound         string           `json:"location_found"`
	ImageURL              string           `json:"image_url,omitempty"`
	VerificationQuestions []PublicQuestion `json:"verification_questions,omitempty"`
}

// PublicView projects the item for public listing. Questions are left out.
func (it *FoundItem) PublicView() PublicItemView {
	return PublicItemView{
		ID:                it.ID,
		Title:             it.Title,
		Category:          it.Category,
		Color:             it.Color,
		PublicDescription: it.PublicDescription,
		DateFound:         it.DateFound,
		LocationFound:     it.LocationFound,
		ImageURL:          it.ImageURL,
	}
}

// PublicDetail projects the item for the public detail page: the public
// view plus question text so claimants can prepare their answers.
func (it *FoundItem) PublicDetail() PublicItemView {
	v := it.PublicView()
	v.VerificationQuestions = make([]PublicQuestion, 0, len(it.VerificationQuestions))
	for _, q := range it.VerificationQuestions {
		v.VerificationQuestions = append(v.VerificationQuestions, PublicQuestion{Question: q.Question})
	}
	return v
}

// StaffItemView is the unfiltered item as seen by staff.
type StaffItemView struct {
	FoundItem
}

// StaffView projects the item for staff.
func (it *FoundItem) StaffView() StaffItemView {
	v := StaffItemView{FoundItem: *it}
	if v.VerificationQuestions == nil {
		v.VerificationQuestions = []VerificationQuestion{}
	}
	if v.Claims == nil {
		v.Claims = []int64{}
	}
	return v
}
