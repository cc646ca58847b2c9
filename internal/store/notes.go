package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corville/notekeep/internal/apperr"
)

// Note is a row in the notes table, joined with its category (if any) so
// list and detail responses carry the category name and color.
type Note struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	CategoryID    *int64    `json:"category"`
	CategoryName  *string   `json:"category_name"`
	CategoryColor *string   `json:"category_color"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const noteColumns = `
	n.id, n.user_id, n.category_id, c.name, c.color, n.title, n.body, n.created_at, n.updated_at
`

func scanNote(row interface{ Scan(...any) error }) (*Note, error) {
	var (
		n     Note
		catID sql.NullInt64
		name  sql.NullString
		color sql.NullString
	)
	err := row.Scan(&n.ID, &n.UserID, &catID, &name, &color, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		n.CategoryID = &catID.Int64
	}
	if name.Valid {
		n.CategoryName = &name.String
	}
	if color.Valid {
		n.CategoryColor = &color.String
	}
	return &n, nil
}

// ListNotes returns the caller's notes, most recently updated first. When
// category is non-nil the result is restricted to that category; the
// category must belong to the caller.
func (db *DB) ListNotes(ctx context.Context, ownerID int64, category *int64) ([]Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.user_id = ?
	`
	args := []any{ownerID}
	if category != nil {
		if _, err := db.CategoryByID(ctx, ownerID, *category); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown category", apperr.ErrValidation)
			}
			return nil, err
		}
		query += ` AND n.category_id = ?`
		args = append(args, *category)
	}
	query += ` ORDER BY n.updated_at DESC, n.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// NoteByID returns a caller-owned note, or apperr.ErrNotFound.
func (db *DB) NoteByID(ctx context.Context, ownerID, id int64) (*Note, error) {
	n, err := scanNote(db.conn.QueryRowContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes n LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.id = ? AND n.user_id = ?
	`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// CreateNote inserts a note and, when it references a category, increments
// that category's note count in the same transaction. The category must
// belong to the caller.
func (db *DB) CreateNote(ctx context.Context, ownerID int64, title, body string, category *int64) (*Note, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if category != nil {
		if err := categoryOwned(ctx, tx, ownerID, *category); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO notes (user_id, category_id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ownerID, category, title, body, now, now)
	if err != nil {
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: note id: %w", err)
	}

	if category != nil {
		if err := bumpNoteCount(ctx, tx, ownerID, *category, +1); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return db.NoteByID(ctx, ownerID, id)
}

// UpdateNote applies a partial update to a caller-owned note. Nil title and
// body are left untouched. setCategory distinguishes "leave the category
// alone" from "clear it": when true, a nil category nulls the reference.
// Reassignment moves the counter from the old category to the new one,
// all inside one transaction.
func (db *DB) UpdateNote(ctx context.Context, ownerID, id int64, title, body *string, setCategory bool, category *int64) (*Note, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var (
		oldCategory sql.NullInt64
		curTitle    string
		curBody     string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT category_id, title, body FROM notes WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&oldCategory, &curTitle, &curBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load note: %w", err)
	}

	if title != nil {
		curTitle = *title
	}
	if body != nil {
		curBody = *body
	}
	newCategory := (*int64)(nil)
	if oldCategory.Valid {
		newCategory = &oldCategory.Int64
	}
	if setCategory {
		newCategory = category
	}
	if newCategory != nil {
		if err := categoryOwned(ctx, tx, ownerID, *newCategory); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE notes SET category_id = ?, title = ?, body = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, newCategory, curTitle, curBody, time.Now().UTC(), id, ownerID); err != nil {
		return nil, fmt.Errorf("store: update note: %w", err)
	}

	// Move the denormalized count when the reference changed.
	oldID := int64(0)
	if oldCategory.Valid {
		oldID = oldCategory.Int64
	}
	newID := int64(0)
	if newCategory != nil {
		newID = *newCategory
	}
	if oldID != newID {
		if oldID != 0 {
			if err := bumpNoteCount(ctx, tx, ownerID, oldID, -1); err != nil {
				return nil, err
			}
		}
		if newID != 0 {
			if err := bumpNoteCount(ctx, tx, ownerID, newID, +1); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return db.NoteByID(ctx, ownerID, id)
}

// DeleteNote removes a caller-owned note, decrementing its category's note
// count in the same transaction.
func (db *DB) DeleteNote(ctx context.Context, ownerID, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var category sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT category_id FROM notes WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: load note: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if category.Valid {
		if err := bumpNoteCount(ctx, tx, ownerID, category.Int64, -1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// categoryOwned verifies, inside the caller's transaction, that the category
// exists and belongs to the owner. A foreign or missing id fails validation
// rather than 404: the note operation itself targeted a valid note, the
// category reference is what's bad.
func categoryOwned(ctx context.Context, tx *sql.Tx, ownerID, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `
		SELECT 1 FROM categories WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: unknown category", apperr.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("store: check category: %w", err)
	}
	return nil
}

// bumpNoteCount applies a counter delta as a single UPDATE expression so
// concurrent note writes against the same category cannot lose updates.
// Decrements floor at zero.
func bumpNoteCount(ctx context.Context, tx *sql.Tx, ownerID, categoryID, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE categories
		SET note_count = MAX(note_count + ?, 0), updated_at = ?
		WHERE id = ? AND user_id = ?
	`, delta, time.Now().UTC(), categoryID, ownerID)
	if err != nil {
		return fmt.Errorf("store: bump note_count: %w", err)
	}
	return nil
}
