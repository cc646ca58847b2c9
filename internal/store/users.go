package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/corville/notekeep/internal/apperr"
)

// User is a row in the users table. The password hash never leaves the
// server in JSON form.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategorySeed describes a category created alongside a new account.
type CategorySeed struct {
	Name  string
	Color string
}

// CreateUser inserts a new account. Returns apperr.ErrEmailTaken when the
// email is already registered.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error) {
	return db.CreateUserWithCategories(ctx, email, passwordHash, name, nil)
}

// CreateUserWithCategories inserts a new account and its seed categories in
// one transaction, so a half-registered account is never observable.
// Returns apperr.ErrEmailTaken when the email is already registered.
func (db *DB) CreateUserWithCategories(ctx context.Context, email, passwordHash, name string, seed []CategorySeed) (*User, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?)
	`, email, passwordHash, name, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, fmt.Errorf("store: insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: user id: %w", err)
	}

	for _, c := range seed {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (user_id, name, color, note_count, created_at, updated_at)
			VALUES (?, ?, ?, 0, ?, ?)
		`, id, c.Name, c.Color, now, now); err != nil {
			return nil, fmt.Errorf("store: seed category %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return &User{ID: id, Email: email, PasswordHash: passwordHash, Name: name, CreatedAt: now}, nil
}

// UserByEmail looks up an account by its login identity.
func (db *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users WHERE email = ?
	`, email))
}

// UserByID looks up an account by id.
func (db *DB) UserByID(ctx context.Context, id int64) (*User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users WHERE id = ?
	`, id))
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	return &u, nil
}
