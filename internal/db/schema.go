package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'VISITOR' CHECK (role IN ('STAFF', 'VISITOR')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS found_items (
    id                     INTEGER PRIMARY KEY,
    title                  TEXT NOT NULL,
    category               TEXT NOT NULL,
    color                  TEXT,
    public_description     TEXT NOT NULL,
    private_notes          TEXT,
    date_found             DATETIME NOT NULL,
    location_found         TEXT NOT NULL,
    storage_location       TEXT,
    requires_id_for_pickup BOOLEAN NOT NULL DEFAULT 0,
    status                 TEXT NOT NULL DEFAULT 'FOUND' CHECK (status IN ('FOUND', 'CLAIMED', 'DONATED', 'DISPOSED')),
    image_url              TEXT,
    photo                  BLOB,
    photo_mime             TEXT,
    created_by             INTEGER NOT NULL REFERENCES users(id),
    created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at             DATETIME
);

CREATE TABLE IF NOT EXISTS verification_questions (
    item_id  INTEGER NOT NULL REFERENCES found_items(id),
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer   TEXT,
    PRIMARY KEY (item_id, position)
);

CREATE TABLE IF NOT EXISTS claims (
    id                       INTEGER PRIMARY KEY,
    item_id                  INTEGER NOT NULL REFERENCES found_items(id),
    claimant_id              INTEGER NOT NULL REFERENCES users(id),
    additional_details       TEXT,
    status                   TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'DENIED')),
    reviewed_by              INTEGER REFERENCES users(id),
    reviewed_at              DATETIME,
    review_notes             TEXT,
    pickup_completed         BOOLEAN NOT NULL DEFAULT 0,
    pickup_date              DATETIME,
    pickup_verification_type TEXT CHECK (pickup_verification_type IS NULL OR pickup_verification_type IN ('ID_CHECKED', 'MATCHED_DESCRIPTION', 'OTHER')),
    pickup_notes             TEXT,
    contact_email            TEXT NOT NULL CHECK (contact_email <> ''),
    contact_phone            TEXT NOT NULL CHECK (contact_phone <> ''),
    created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS claim_answers (
    claim_id INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer   TEXT,
    PRIMARY KEY (claim_id, position)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
