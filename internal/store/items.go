package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const itemColumns = `id, title, category, color, public_description, private_notes, date_found,
	location_found, storage_location, requires_id_for_pickup, status, image_url,
	created_by, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.FoundItem, error) {
	item := &model.FoundItem{}
	var color, privateNotes, storageLocation, imageURL sql.NullString
	err := row.Scan(&item.ID, &item.Title, &item.Category, &color, &item.PublicDescription,
		&privateNotes, &item.DateFound, &item.LocationFound, &storageLocation,
		&item.RequiresIDForPickup, &item.Status, &imageURL,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err != nil {
		return nil, err
	}
	item.Color = color.String
	item.PrivateNotes = privateNotes.String
	item.StorageLocation = storageLocation.String
	item.ImageURL = imageURL.String
	return item, nil
}

// CreateItem creates a found item together with its verification questions.
func CreateItem(ctx context.Context, db *sql.DB, in model.ItemInput, createdBy int64) (*model.FoundItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO found_items (title, category, color, public_description, private_notes,
		     date_found, location_found, storage_location, requires_id_for_pickup, image_url, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Category, in.Color, in.PublicDescription, in.PrivateNotes,
		in.DateFound.UTC(), in.LocationFound, in.StorageLocation, in.RequiresIDForPickup, in.ImageURL, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if err := replaceQuestions(ctx, tx, id, in.VerificationQuestions); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with its questions and claim ids. Soft-deleted
// items are returned too; callers check DeletedAt.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.FoundItem, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q querier, id int64) (*model.FoundItem, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM found_items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if err := loadItemDetails(ctx, q, item); err != nil {
		return nil, err
	}
	return item, nil
}

// LoadItemDetails fills in the verification questions and claim ids of item.
func LoadItemDetails(ctx context.Context, db *sql.DB, item *model.FoundItem) error {
	return loadItemDetails(ctx, db, item)
}

func loadItemDetails(ctx context.Context, q querier, item *model.FoundItem) error {
	rows, err := q.QueryContext(ctx,
		`SELECT question, answer FROM verification_questions
		 WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("listing verification questions: %w", err)
	}
	defer rows.Close()

	item.VerificationQuestions = []model.VerificationQuestion{}
	for rows.Next() {
		var vq model.VerificationQuestion
		var answer sql.NullString
		if err := rows.Scan(&vq.Question, &answer); err != nil {
			return fmt.Errorf("scanning verification question: %w", err)
		}
		vq.Answer = answer.String
		item.VerificationQuestions = append(item.VerificationQuestions, vq)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing verification questions: %w", err)
	}

	ids, err := listItemClaimIDs(ctx, q, item.ID)
	if err != nil {
		return err
	}
	item.Claims = ids
	return nil
}

// ListItems returns all non-deleted items newest first, optionally filtered
// by status. Questions and claim ids are not loaded.
func ListItems(ctx context.Context, db *sql.DB, status string) ([]model.FoundItem, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM found_items
			 WHERE deleted_at IS NULL AND status = ? ORDER BY created_at DESC, id DESC`, status,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM found_items
			 WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem writes every editable field of item, replacing its questions.
// The write only applies while the stored status still equals prevStatus.
// It returns false if the item is gone, deleted or changed status meanwhile.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.FoundItem, prevStatus string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE found_items SET title = ?, category = ?, color = ?, public_description = ?,
		     private_notes = ?, date_found = ?, location_found = ?, storage_location = ?,
		     requires_id_for_pickup = ?, status = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status = ?`,
		item.Title, item.Category, item.Color, item.PublicDescription,
		item.PrivateNotes, item.DateFound.UTC(), item.LocationFound, item.StorageLocation,
		item.RequiresIDForPickup, item.Status, item.ImageURL, item.ID, prevStatus,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := replaceQuestions(ctx, tx, item.ID, item.VerificationQuestions); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing item update: %w", err)
	}
	return true, nil
}

func replaceQuestions(ctx context.Context, tx *sql.Tx, itemID int64, questions []model.VerificationQuestion) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM verification_questions WHERE item_id = ?`, itemID,
	); err != nil {
		return fmt.Errorf("clearing verification questions: %w", err)
	}

	for i, vq := range questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO verification_questions (item_id, position, question, answer) VALUES (?, ?, ?, ?)`,
			itemID, i, vq.Question, vq.Answer,
		); err != nil {
			return fmt.Errorf("adding verification question: %w", err)
		}
	}
	return nil
}

// DeleteItem soft-deletes an item so claims filed against it stay resolvable.
// It returns false if there was no live item to delete.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE found_items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// SetItemPhoto stores an item's photo and points its image URL at it.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime, imageURL string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE found_items SET photo = ?, photo_mime = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, imageURL, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting item photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting item photo: %w", err)
	}
	return n > 0, nil
}

// GetItemPhoto returns a live item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM found_items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}
