package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corville/notekeep/internal/apperr"
)

// Category is a row in the categories table. NoteCount is denormalized and
// maintained by the note write paths, never recomputed on read.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	NoteCount int64     `json:"note_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListCategories returns the caller's categories, oldest first.
func (db *DB) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, name, color, note_count, created_at, updated_at
		FROM categories WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.NoteCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryByID returns a category owned by the caller, or apperr.ErrNotFound.
func (db *DB) CategoryByID(ctx context.Context, ownerID, id int64) (*Category, error) {
	var c Category
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, color, note_count, created_at, updated_at
		FROM categories WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.NoteCount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category for the caller. Names are unique per
// user; a duplicate fails validation.
func (db *DB) CreateCategory(ctx context.Context, ownerID int64, name, color string) (*Category, error) {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, color, note_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, ownerID, name, color, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category name already in use", apperr.ErrValidation)
		}
		return nil, fmt.Errorf("store: insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: category id: %w", err)
	}
	return &Category{ID: id, UserID: ownerID, Name: name, Color: color, CreatedAt: now, UpdatedAt: now}, nil
}

// UpdateCategory applies a partial update to a caller-owned category. Nil
// fields are left untouched.
func (db *DB) UpdateCategory(ctx context.Context, ownerID, id int64, name, color *string) (*Category, error) {
	c, err := db.CategoryByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		c.Name = *name
	}
	if color != nil {
		c.Color = *color
	}
	c.UpdatedAt = time.Now().UTC()
	_, err = db.conn.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, c.Name, c.Color, c.UpdatedAt, id, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category name already in use", apperr.ErrValidation)
		}
		return nil, fmt.Errorf("store: update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a caller-owned category and nulls the category
// reference on any notes still pointing at it, in one transaction.
func (db *DB) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// Orphan referencing notes first so the cascade is an explicit step of
	// the same transaction.
	if _, err := tx.ExecContext(ctx, `
		UPDATE notes SET category_id = NULL, updated_at = ?
		WHERE category_id = ? AND user_id = ?
	`, time.Now().UTC(), id, ownerID); err != nil {
		return fmt.Errorf("store: orphan notes: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}
