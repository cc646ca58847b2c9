package api

import (
	"encoding/json"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate validates the registration payload. EmailFormat checks the
// address syntax only; Email would resolve the domain over DNS. The 72-byte
// password cap is the bcrypt input limit.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login payload.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest is the body for POST /auth/token/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh"`
}

// Validate validates the refresh payload.
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// CreateCategoryRequest is the body for POST /categories.
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Validate validates the category payload.
func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Color, validation.Required, validation.Match(hexColorRe)),
	)
}

// UpdateCategoryRequest is the body for PATCH /categories/{id}. Nil fields
// are left untouched.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Validate validates the partial category payload.
func (r UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Color, validation.NilOrNotEmpty, validation.Match(hexColorRe)),
	)
}

// OptionalID is a tri-state id field for PATCH bodies: absent (leave
// untouched), null (clear the reference), or a number.
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON records that the field was present even when it is null.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// CreateNoteRequest is the body for POST /notes. Blank titles and bodies
// are legal; the category reference is optional.
type CreateNoteRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category *int64 `json:"category"`
}

// Validate validates the note payload.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 255)),
		validation.Field(&r.Category, validation.Min(int64(1))),
	)
}

// UpdateNoteRequest is the body for PATCH /notes/{id}.
type UpdateNoteRequest struct {
	Title    *string    `json:"title"`
	Body     *string    `json:"body"`
	Category OptionalID `json:"category"`
}

// Validate validates the partial note payload.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 255)),
	)
}
