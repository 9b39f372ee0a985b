package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"masarif/internal/store"
	"masarif/internal/store/memory"
)

func newTestService() *Service {
	s := memory.New()
	return NewService(s, s, time.Hour)
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, session, err := svc.SignUp(ctx, " Test@Example.com ", "secret1", "أحمد")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.Email != "test@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
	if session.Token == "" {
		t.Error("no session token issued")
	}

	got, err := svc.UserFromToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("token resolved to user %d, want %d", got.ID, user.ID)
	}

	// a second registration with the same email must fail
	if _, _, err := svc.SignUp(ctx, "test@example.com", "another1", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate SignUp: %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "test@example.com", "secret1"); err != nil {
		t.Errorf("SignIn: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "test@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.SignUp(ctx, "bad-email", "secret1", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email: %v", err)
	}
	if _, _, err := svc.SignUp(ctx, "a@b.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password: %v", err)
	}
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, session, err := svc.SignUp(ctx, "a@b.com", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.UserFromToken(ctx, session.Token); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("token after sign-out: %v", err)
	}
	// signing out twice, or with no token, is harmless
	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Errorf("second SignOut: %v", err)
	}
	if err := svc.SignOut(ctx, ""); err != nil {
		t.Errorf("empty-token SignOut: %v", err)
	}
}

func TestExpiredSession(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	svc := NewService(mem, mem, time.Hour)

	user, _, err := svc.SignUp(ctx, "a@b.com", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	expired := store.Session{Token: "old", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := mem.CreateSession(ctx, expired); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UserFromToken(ctx, "old"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expired token: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, _, err := svc.SignUp(ctx, "a@b.com", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newsecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password: %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret1", "tiny"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak new password: %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret1", "newsecret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "a@b.com", "newsecret"); err != nil {
		t.Errorf("SignIn with new password: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "a@b.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works: %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, _, err := svc.SignUp(ctx, "a@b.com", "secret1", ""); err != nil {
		t.Fatal(err)
	}

	token, err := svc.ResetPassword(ctx, " A@B.com ")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	user, err := svc.UserFromToken(ctx, token)
	if err != nil {
		t.Fatalf("UserFromToken with reset token: %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret1", "newsecret"); err != nil {
		t.Fatalf("ChangePassword after reset: %v", err)
	}

	if _, err := svc.ResetPassword(ctx, "missing@b.com"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}
