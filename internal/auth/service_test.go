package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corville/notekeep/internal/apperr"
	"github.com/corville/notekeep/internal/store"
	"github.com/corville/notekeep/internal/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db := testutil.TestDB(t)
	return NewService(db, testSecret, time.Hour, 24*time.Hour), db
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "a@x.com", "password1", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "a@x.com" || user.Name != "Ada" {
		t.Errorf("user = %+v", user)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("register should issue a token pair")
	}

	_, loginTokens, err := svc.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// The issued access token authenticates as the registered user.
	id, err := svc.Authenticate(loginTokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != user.ID {
		t.Errorf("authenticated id = %d, want %d", id, user.ID)
	}
}

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	cats, err := db.ListCategories(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("seeded categories = %d, want 3", len(cats))
	}
	if cats[0].Name != "Random Thoughts" || cats[0].Color != "#EF9C66" {
		t.Errorf("first category = %+v", cats[0])
	}
	for _, c := range cats {
		if c.NoteCount != 0 {
			t.Errorf("seeded category %q note_count = %d, want 0", c.Name, c.NoteCount)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "a@x.com", "password1", ""); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(ctx, "a@x.com", "password2", "")
	if !errors.Is(err, apperr.ErrEmailTaken) {
		t.Fatalf("duplicate register err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "a@x.com", "password1", ""); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(ctx, "a@x.com", "wrong-password"); !errors.Is(err, apperr.ErrBadCredentials) {
		t.Errorf("wrong password err = %v, want ErrBadCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@x.com", "password1"); !errors.Is(err, apperr.ErrBadCredentials) {
		t.Errorf("unknown email err = %v, want ErrBadCredentials", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh should issue a new refresh token")
	}

	// The consumed token must not work a second time.
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("reused refresh err = %v, want ErrInvalidToken", err)
	}

	// The rotated replacement still works.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token refresh: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("refresh after logout err = %v, want ErrInvalidToken", err)
	}

	// Access tokens stay valid until natural expiry.
	if _, err := svc.Authenticate(tokens.AccessToken); err != nil {
		t.Errorf("access token should survive logout: %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Authenticate(token); !errors.Is(err, apperr.ErrInvalidToken) {
			t.Errorf("Authenticate(%q) err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestAuthenticateRejectsExpired(t *testing.T) {
	db := testutil.TestDB(t)
	// Negative TTLs issue tokens that are already expired.
	expired := NewService(db, testSecret, -time.Minute, -time.Second)
	ctx := context.Background()

	_, tokens, err := expired.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatal(err)
	}

	live := NewService(db, testSecret, time.Hour, 24*time.Hour)
	if _, err := live.Authenticate(tokens.AccessToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expired access token err = %v, want ErrInvalidToken", err)
	}
	if _, err := live.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("expired refresh token err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatal(err)
	}

	// An access token carries no jti and must not pass as a refresh token.
	if _, err := svc.Refresh(ctx, tokens.AccessToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("access-as-refresh err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "a@x.com", "password1", "")
	if err != nil {
		t.Fatal(err)
	}

	other := NewService(db, "another-secret-another-secret!!!", time.Hour, 24*time.Hour)
	if _, err := other.Authenticate(tokens.AccessToken); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Errorf("wrong secret err = %v, want ErrInvalidToken", err)
	}
}
