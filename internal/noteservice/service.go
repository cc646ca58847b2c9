// Package noteservice exposes the owner-scoped note and category
// operations behind the API layer.
package noteservice

import (
	"context"

	"github.com/corville/notekeep/internal/store"
)

// EventPublisher receives change notifications after successful writes.
// The SSE broker satisfies it; a nil publisher disables events.
type EventPublisher interface {
	PublishChange(entity, kind string, id int64)
}

// Service coordinates store operations and change events. Ownership
// enforcement lives in the store queries themselves; every method takes the
// authenticated owner id and can only observe that owner's rows.
type Service struct {
	db     *store.DB
	events EventPublisher
}

// NewService creates a note service. events may be nil.
func NewService(db *store.DB, events EventPublisher) *Service {
	return &Service{db: db, events: events}
}

func (s *Service) publish(entity, kind string, id int64) {
	if s.events != nil {
		s.events.PublishChange(entity, kind, id)
	}
}

// Categories lists the owner's categories with their current note counts.
func (s *Service) Categories(ctx context.Context, ownerID int64) ([]store.Category, error) {
	return s.db.ListCategories(ctx, ownerID)
}

// CreateCategory creates a category for the owner.
func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name, color string) (*store.Category, error) {
	c, err := s.db.CreateCategory(ctx, ownerID, name, color)
	if err != nil {
		return nil, err
	}
	s.publish("category", "created", c.ID)
	return c, nil
}

// UpdateCategory applies a partial update to an owner's category.
func (s *Service) UpdateCategory(ctx context.Context, ownerID, id int64, name, color *string) (*store.Category, error) {
	c, err := s.db.UpdateCategory(ctx, ownerID, id, name, color)
	if err != nil {
		return nil, err
	}
	s.publish("category", "updated", c.ID)
	return c, nil
}

// DeleteCategory removes an owner's category, orphaning its notes.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	if err := s.db.DeleteCategory(ctx, ownerID, id); err != nil {
		return err
	}
	s.publish("category", "deleted", id)
	return nil
}

// Notes lists the owner's notes, optionally restricted to one category.
func (s *Service) Notes(ctx context.Context, ownerID int64, category *int64) ([]store.Note, error) {
	return s.db.ListNotes(ctx, ownerID, category)
}

// Note returns a single owner-scoped note.
func (s *Service) Note(ctx context.Context, ownerID, id int64) (*store.Note, error) {
	return s.db.NoteByID(ctx, ownerID, id)
}

// CreateNote creates a note; the category counter update happens inside the
// store transaction.
func (s *Service) CreateNote(ctx context.Context, ownerID int64, title, body string, category *int64) (*store.Note, error) {
	n, err := s.db.CreateNote(ctx, ownerID, title, body, category)
	if err != nil {
		return nil, err
	}
	s.publish("note", "created", n.ID)
	return n, nil
}

// UpdateNote applies a partial update. setCategory distinguishes leaving
// the category untouched from explicitly clearing it.
func (s *Service) UpdateNote(ctx context.Context, ownerID, id int64, title, body *string, setCategory bool, category *int64) (*store.Note, error) {
	n, err := s.db.UpdateNote(ctx, ownerID, id, title, body, setCategory, category)
	if err != nil {
		return nil, err
	}
	s.publish("note", "updated", n.ID)
	return n, nil
}

// DeleteNote removes a note; the counter decrement happens inside the store
// transaction.
func (s *Service) DeleteNote(ctx context.Context, ownerID, id int64) error {
	if err := s.db.DeleteNote(ctx, ownerID, id); err != nil {
		return err
	}
	s.publish("note", "deleted", id)
	return nil
}
