package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/identity"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/repository/memory"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

type identityFixture struct {
	users    repository.UserRepository
	sessions *SessionProvider
	svc      *IdentityService
}

func newIdentityFixture(t *testing.T, attemptsPerMinute int) *identityFixture {
	t.Helper()
	store := memory.NewStore().Repositories()
	dispatcher := events.NewInMemoryDispatcher(nil)
	sessions := NewSessionProvider(store.Users, dispatcher)
	cfg := testConfig()
	cfg.Auth.LoginAttemptsPerMinute = attemptsPerMinute
	svc := NewIdentityService(cfg, IdentityDependencies{
		Provider:    identity.NewLocalProvider(store.Users, 4),
		Users:       store.Users,
		Sessions:    sessions,
		Revocations: auth.NewMemoryRevocationStore(),
	})
	return &identityFixture{users: store.Users, sessions: sessions, svc: svc}
}

func authReason(t *testing.T, err error) string {
	t.Helper()
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeAuthRejected {
		t.Fatalf("error = %v, want AUTH_REJECTED", err)
	}
	reason, _ := de.Details["reason"].(string)
	return reason
}

func TestRegisterLoginLogoutNotifiesSubscribers(t *testing.T) {
	f := newIdentityFixture(t, 0)
	ctx := context.Background()

	var seen []*domain.Identity
	unsubscribe := f.sessions.Subscribe(func(id *domain.Identity) { seen = append(seen, id) })
	defer unsubscribe()

	reg, err := f.svc.Register(ctx, RegisterInput{DisplayName: "  Ana  ", Email: "Ana@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Identity.DisplayName != "Ana" || reg.Identity.Email != "ana@example.com" || reg.Token == "" {
		t.Fatalf("Register() = %+v", reg)
	}

	login, err := f.svc.Login(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	sess, err := f.svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if sess.UserID != reg.Identity.UserID {
		t.Fatalf("session user = %s, want %s", sess.UserID, reg.Identity.UserID)
	}

	current, err := f.svc.CurrentIdentity(ctx, sess)
	if err != nil || current.DisplayName != "Ana" {
		t.Fatalf("CurrentIdentity() = %+v, %v", current, err)
	}

	if err := f.svc.Logout(ctx, sess); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, login.Token); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("Authenticate() after logout error = %v", err)
	}

	if len(seen) != 3 || seen[0] == nil || seen[1] == nil || seen[2] != nil {
		t.Fatalf("subscriber saw %v, want identity, identity, nil", seen)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	f := newIdentityFixture(t, 0)
	calls := 0
	unsubscribe := f.sessions.Subscribe(func(*domain.Identity) { calls++ })
	unsubscribe()

	if _, err := f.svc.Register(context.Background(), RegisterInput{DisplayName: "Luis", Email: "luis@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d after unsubscribe", calls)
	}
}

func TestRegisterRejections(t *testing.T) {
	f := newIdentityFixture(t, 0)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, RegisterInput{DisplayName: "Ana", Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name   string
		in     RegisterInput
		reason identity.Reason
		status int
	}{
		{"email in use", RegisterInput{DisplayName: "Ana", Email: "ANA@example.com", Password: "secret1"}, identity.ReasonEmailInUse, http.StatusConflict},
		{"weak password", RegisterInput{DisplayName: "Ana", Email: "otra@example.com", Password: "123"}, identity.ReasonWeakPassword, http.StatusBadRequest},
		{"invalid email", RegisterInput{DisplayName: "Ana", Email: "not-an-email", Password: "secret1"}, identity.ReasonInvalidEmail, http.StatusBadRequest},
		{"short name", RegisterInput{DisplayName: " A ", Email: "a@example.com", Password: "secret1"}, identity.ReasonInvalidDisplayName, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.in)
			if got := authReason(t, err); got != string(tt.reason) {
				t.Fatalf("reason = %s, want %s", got, tt.reason)
			}
			if de := apperrors.ToDomainError(err); de.HTTPStatus != tt.status || de.Message == "" {
				t.Fatalf("status = %d message = %q", de.HTTPStatus, de.Message)
			}
		})
	}
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	f := newIdentityFixture(t, 0)
	_, err := f.svc.Register(context.Background(), RegisterInput{
		DisplayName: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret2",
	})
	assertCode(t, err, apperrors.CodeValidationRejected)
}

func TestLoginRejections(t *testing.T) {
	f := newIdentityFixture(t, 0)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, RegisterInput{DisplayName: "Ana", Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_ = f.users.Create(ctx, &domain.User{DisplayName: "Off", Email: "off@example.com", PasswordHash: "x", Disabled: true})

	tests := []struct {
		name     string
		email    string
		password string
		reason   identity.Reason
	}{
		{"unknown user", "nadie@example.com", "secret1", identity.ReasonUserNotFound},
		{"wrong password", "ana@example.com", "badpass", identity.ReasonWrongPassword},
		{"invalid email", "ana", "secret1", identity.ReasonInvalidEmail},
		{"disabled", "off@example.com", "secret1", identity.ReasonUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tt.email, tt.password)
			if got := authReason(t, err); got != string(tt.reason) {
				t.Fatalf("reason = %s, want %s", got, tt.reason)
			}
		})
	}
}

func TestLoginAttemptLimit(t *testing.T) {
	f := newIdentityFixture(t, 2)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = f.svc.Login(ctx, "ana@example.com", "wrong")
	}
	_, err := f.svc.Login(ctx, "ana@example.com", "wrong")
	if got := authReason(t, err); got != string(identity.ReasonTooManyRequests) {
		t.Fatalf("reason = %s, want too-many-requests", got)
	}
}

func TestLoginAttemptLimitIgnoresSuccessfulSignIns(t *testing.T) {
	f := newIdentityFixture(t, 2)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, RegisterInput{DisplayName: "Ana", Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.svc.Login(ctx, "ana@example.com", "secret1"); err != nil {
			t.Fatalf("Login() #%d error = %v", i+1, err)
		}
	}
	_, _ = f.svc.Login(ctx, "ana@example.com", "wrong")
	if _, err := f.svc.Login(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("Login() after one failure error = %v", err)
	}
}

type unreachableRevocations struct{}

func (unreachableRevocations) Revoke(context.Context, string, time.Time) error {
	return errBoom
}

func (unreachableRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errBoom
}

func TestLogoutRejectsTokenWhenRevocationStoreIsDown(t *testing.T) {
	store := memory.NewStore().Repositories()
	svc := NewIdentityService(testConfig(), IdentityDependencies{
		Provider:    identity.NewLocalProvider(store.Users, 4),
		Users:       store.Users,
		Sessions:    NewSessionProvider(store.Users, events.NewInMemoryDispatcher(nil)),
		Revocations: unreachableRevocations{},
	})
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{DisplayName: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sess, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if err := svc.Logout(ctx, sess); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	_, err = svc.Authenticate(ctx, res.Token)
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newIdentityFixture(t, 0)
	_, err := f.svc.Authenticate(context.Background(), "not-a-token")
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestCurrentIdentityFallsBackToSession(t *testing.T) {
	f := newIdentityFixture(t, 0)
	sess := &domain.Session{Identity: domain.Identity{UserID: "firebase-only", DisplayName: "Usuario"}, ExpiresAt: time.Now().Add(time.Hour)}
	id, err := f.svc.CurrentIdentity(context.Background(), sess)
	if err != nil || id.UserID != "firebase-only" {
		t.Fatalf("CurrentIdentity() = %+v, %v", id, err)
	}
}
