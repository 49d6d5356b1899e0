package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

const claimSelect = `SELECT c.id, c.item_id, c.claimant_id, c.additional_details, c.status,
	        c.reviewed_by, c.reviewed_at, c.review_notes,
	        c.pickup_completed, c.pickup_date, c.pickup_verification_type, c.pickup_notes,
	        c.contact_email, c.contact_phone, c.created_at, c.updated_at,
	        cu.username AS claimant_username, COALESCE(ru.username, '') AS reviewer_username
	 FROM claims c
	 JOIN users cu ON cu.id = c.claimant_id
	 LEFT JOIN users ru ON ru.id = c.reviewed_by`

func scanClaim(row rowScanner, extra ...any) (*model.Claim, error) {
	c := &model.Claim{}
	var details, notes, pickupType, pickupNotes sql.NullString
	dest := []any{&c.ID, &c.ItemID, &c.ClaimantID, &details, &c.Status,
		&c.ReviewedBy, &c.ReviewedAt, &notes,
		&c.PickupCompleted, &c.PickupDate, &pickupType, &pickupNotes,
		&c.ContactEmail, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt,
		&c.ClaimantUsername, &c.ReviewerUsername}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.AdditionalDetails = details.String
	c.ReviewNotes = notes.String
	c.PickupVerificationType = pickupType.String
	c.PickupNotes = pickupNotes.String
	return c, nil
}

// CreateClaim files a PENDING claim against a live item in FOUND status. The
// item check and the insert share one transaction.
func CreateClaim(ctx context.Context, db *sql.DB, claimantID int64, in model.ClaimInput) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM found_items WHERE id = ? AND deleted_at IS NULL`, in.ItemID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError("item")
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if status != model.ItemStatusFound {
		return nil, model.NewInvalidStateError("Item is no longer available for claiming")
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, additional_details, contact_email, contact_phone)
		 VALUES (?, ?, ?, ?, ?)`,
		in.ItemID, claimantID, in.AdditionalDetails, in.ContactEmail, in.ContactPhone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	if err := replaceAnswers(ctx, tx, id, in.Answers); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID with answers and joined usernames.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}

	c.Answers, err = listAnswers(ctx, db, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListClaims returns claims newest first with a summary of their item. If
// claimantID is positive only that user's claims are returned.
func ListClaims(ctx context.Context, db *sql.DB, claimantID int64) ([]model.ClaimListEntry, error) {
	query := `SELECT c.id, c.item_id, c.claimant_id, c.additional_details, c.status,
	                 c.reviewed_by, c.reviewed_at, c.review_notes,
	                 c.pickup_completed, c.pickup_date, c.pickup_verification_type, c.pickup_notes,
	                 c.contact_email, c.contact_phone, c.created_at, c.updated_at,
	                 cu.username AS claimant_username, COALESCE(ru.username, '') AS reviewer_username,
	                 i.title, i.category, i.location_found, i.date_found, i.public_description,
	                 COALESCE(i.image_url, '')
	          FROM claims c
	          JOIN users cu ON cu.id = c.claimant_id
	          LEFT JOIN users ru ON ru.id = c.reviewed_by
	          JOIN found_items i ON i.id = c.item_id
	          WHERE 1=1`
	var args []any

	if claimantID > 0 {
		query += ` AND c.claimant_id = ?`
		args = append(args, claimantID)
	}

	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var entries []model.ClaimListEntry
	for rows.Next() {
		var item model.ItemSummary
		c, err := scanClaim(rows, &item.Title, &item.Category, &item.LocationFound,
			&item.DateFound, &item.PublicDescription, &item.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		item.ID = c.ItemID
		entries = append(entries, model.ClaimListEntry{Claim: *c, Item: item})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	rows.Close()

	for i := range entries {
		entries[i].Answers, err = listAnswers(ctx, db, entries[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// UpdateClaimFields writes the claimant-editable fields of c. The write only
// applies while the claim is still PENDING.
func UpdateClaimFields(ctx context.Context, db *sql.DB, c *model.Claim) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET additional_details = ?, contact_email = ?, contact_phone = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		c.AdditionalDetails, c.ContactEmail, c.ContactPhone, c.ID, model.ClaimStatusPending,
	)
	if err != nil {
		return fmt.Errorf("updating claim: %w", err)
	}
	if err := expectClaimRow(ctx, tx, result, c.ID, "can only edit pending claims"); err != nil {
		return err
	}

	if err := replaceAnswers(ctx, tx, c.ID, c.Answers); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing claim update: %w", err)
	}
	return nil
}

// ReviewClaim records a review outcome on a PENDING claim. When the outcome is
// APPROVED the claimed item is marked CLAIMED in the same transaction.
func ReviewClaim(ctx context.Context, db *sql.DB, id, reviewerID int64, status, notes string, at time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, review_notes = ?, reviewed_by = ?, reviewed_at = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, notes, reviewerID, at.UTC(), id, model.ClaimStatusPending,
	)
	if err != nil {
		return fmt.Errorf("reviewing claim: %w", err)
	}
	if err := expectClaimRow(ctx, tx, result, id, "claim has already been reviewed"); err != nil {
		return err
	}

	if status == model.ClaimStatusApproved {
		_, err = tx.ExecContext(ctx,
			`UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = (SELECT item_id FROM claims WHERE id = ?)`,
			model.ItemStatusClaimed, id,
		)
		if err != nil {
			return fmt.Errorf("marking item claimed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing review: %w", err)
	}
	return nil
}

// MarkPickup records the physical handover of an APPROVED claim. The pickup
// flag latches: a claim can be picked up once.
func MarkPickup(ctx context.Context, db *sql.DB, id int64, verification, notes string, at time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET pickup_completed = 1, pickup_date = ?, pickup_verification_type = ?,
		     pickup_notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND pickup_completed = 0`,
		at.UTC(), verification, notes, id, model.ClaimStatusApproved,
	)
	if err != nil {
		return fmt.Errorf("marking pickup: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking pickup: %w", err)
	}
	if n == 0 {
		var status string
		var picked bool
		err := tx.QueryRowContext(ctx,
			`SELECT status, pickup_completed FROM claims WHERE id = ?`, id,
		).Scan(&status, &picked)
		if err == sql.ErrNoRows {
			return model.NewNotFoundError("claim")
		}
		if err != nil {
			return fmt.Errorf("checking claim: %w", err)
		}
		if picked {
			return model.NewInvalidStateError("pickup already completed")
		}
		return model.NewInvalidStateError("only approved claims can be picked up")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pickup: %w", err)
	}
	return nil
}

// DeleteClaim removes a claim and its answers. Because an item's claim set is
// derived from this table, the item no longer lists the claim afterwards.
// It returns false if the claim did not exist.
func DeleteClaim(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM claim_answers WHERE claim_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting claim answers: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing claim deletion: %w", err)
	}
	return n > 0, nil
}

// expectClaimRow turns a guarded update that touched no rows into NotFound
// or InvalidState.
func expectClaimRow(ctx context.Context, tx *sql.Tx, result sql.Result, id int64, stateMsg string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return model.NewNotFoundError("claim")
	}
	if err != nil {
		return fmt.Errorf("checking claim: %w", err)
	}
	return model.NewInvalidStateError(stateMsg)
}

func listItemClaimIDs(ctx context.Context, q querier, itemID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM claims WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item claims: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning claim id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func listAnswers(ctx context.Context, q querier, claimID int64) ([]model.ClaimAnswer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT question, answer FROM claim_answers WHERE claim_id = ? ORDER BY position`, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claim answers: %w", err)
	}
	defer rows.Close()

	answers := []model.ClaimAnswer{}
	for rows.Next() {
		var a model.ClaimAnswer
		var answer sql.NullString
		if err := rows.Scan(&a.Question, &answer); err != nil {
			return nil, fmt.Errorf("scanning claim answer: %w", err)
		}
		a.Answer = answer.String
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func replaceAnswers(ctx context.Context, tx *sql.Tx, claimID int64, answers []model.ClaimAnswer) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM claim_answers WHERE claim_id = ?`, claimID,
	); err != nil {
		return fmt.Errorf("clearing claim answers: %w", err)
	}

	for i, a := range answers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claim_answers (claim_id, position, question, answer) VALUES (?, ?, ?, ?)`,
			claimID, i, a.Question, a.Answer,
		); err != nil {
			return fmt.Errorf("adding claim answer: %w", err)
		}
	}
	return nil
}
