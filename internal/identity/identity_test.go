package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/repository/memory"
)

type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *domain.User) error { return f.err }
func (f failingUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, f.err
}
func (f failingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, f.err
}

func TestLocalProviderSignUp(t *testing.T) {
	provider := NewLocalProvider(memory.NewStore().Repositories().Users, 4)
	ctx := context.Background()

	id, err := provider.SignUp(ctx, "  Ana@Example.com ", "secret1", " Ana ")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if id.UserID == "" || id.Email != "ana@example.com" || id.DisplayName != "Ana" {
		t.Errorf("SignUp() = %+v", id)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     Reason
	}{
		{name: "duplicate", email: "ana@example.com", password: "secret1", want: ReasonEmailInUse},
		{name: "bad email", email: "ana-at-example", password: "secret1", want: ReasonInvalidEmail},
		{name: "short password", email: "new@example.com", password: "12345", want: ReasonWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.SignUp(ctx, tt.email, tt.password, "Ana")
			if got := ReasonOf(err); got != tt.want {
				t.Fatalf("reason = %s, want %s (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestLocalProviderSignIn(t *testing.T) {
	repos := memory.NewStore().Repositories()
	provider := NewLocalProvider(repos.Users, 4)
	ctx := context.Background()

	if _, err := provider.SignUp(ctx, "luis@example.com", "secret1", "Luis"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	disabled := &domain.User{Email: "off@example.com", PasswordHash: "x", Disabled: true}
	if err := repos.Users.Create(ctx, disabled); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	id, err := provider.SignIn(ctx, "LUIS@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if id.DisplayName != "Luis" {
		t.Errorf("DisplayName = %q", id.DisplayName)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     Reason
	}{
		{name: "wrong password", email: "luis@example.com", password: "nope", want: ReasonWrongPassword},
		{name: "unknown user", email: "ghost@example.com", password: "secret1", want: ReasonUserNotFound},
		{name: "invalid email", email: "luis", password: "secret1", want: ReasonInvalidEmail},
		{name: "disabled", email: "off@example.com", password: "secret1", want: ReasonUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.SignIn(ctx, tt.email, tt.password)
			if got := ReasonOf(err); got != tt.want {
				t.Fatalf("reason = %s, want %s (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestLocalProviderStoreFailureIsNetworkError(t *testing.T) {
	provider := NewLocalProvider(failingUsers{err: repository.ErrUnavailable}, 4)
	_, err := provider.SignIn(context.Background(), "ana@example.com", "secret1")
	if ReasonOf(err) != ReasonNetwork {
		t.Fatalf("reason = %s, want %s", ReasonOf(err), ReasonNetwork)
	}
	if !errors.Is(err, repository.ErrUnavailable) {
		t.Errorf("error chain lost the store failure: %v", err)
	}
}

func TestMapFirebaseError(t *testing.T) {
	tests := []struct {
		err  error
		want Reason
	}{
		{&googleapi.Error{Code: 400, Message: "EMAIL_EXISTS"}, ReasonEmailInUse},
		{&googleapi.Error{Code: 400, Message: "WEAK_PASSWORD : Password should be at least 6 characters"}, ReasonWeakPassword},
		{&googleapi.Error{Code: 400, Message: "EMAIL_NOT_FOUND"}, ReasonUserNotFound},
		{&googleapi.Error{Code: 400, Message: "INVALID_LOGIN_CREDENTIALS"}, ReasonWrongPassword},
		{&googleapi.Error{Code: 400, Message: "USER_DISABLED"}, ReasonUserDisabled},
		{&googleapi.Error{Code: 400, Message: "TOO_MANY_ATTEMPTS_TRY_LATER : blocked"}, ReasonTooManyRequests},
		{&googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Reason: "invalid", Message: "INVALID_EMAIL"}}}, ReasonInvalidEmail},
		{&googleapi.Error{Code: 429}, ReasonTooManyRequests},
		{errors.New("dial tcp: i/o timeout"), ReasonNetwork},
	}
	for _, tt := range tests {
		if got := ReasonOf(mapFirebaseError(tt.err)); got != tt.want {
			t.Errorf("mapFirebaseError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMessageLocalization(t *testing.T) {
	if got := Message(ReasonEmailInUse, "es"); got != "Este email ya está registrado" {
		t.Errorf("es message = %q", got)
	}
	if got := Message(ReasonWrongPassword, "en"); got != "Wrong password" {
		t.Errorf("en message = %q", got)
	}
	if got := Message(ReasonUserNotFound, "fr"); got != "Usuario no encontrado" {
		t.Errorf("fallback message = %q", got)
	}
	if HTTPStatus(ReasonEmailInUse) != http.StatusConflict || HTTPStatus(ReasonTooManyRequests) != http.StatusTooManyRequests {
		t.Error("unexpected status mapping")
	}
}

func TestAttemptLimiter(t *testing.T) {
	l := NewAttemptLimiter(2)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if !l.Allow("ana") {
			t.Fatal("checks without failures must not consume attempts")
		}
	}
	l.RecordFailure("ana")
	if !l.Allow("ana") {
		t.Fatal("blocked after a single failure")
	}
	l.RecordFailure("ana")
	if l.Allow("ana") {
		t.Fatal("allowed after exhausting failures within the same instant")
	}
	if !l.Allow("luis") {
		t.Fatal("limit leaked across keys")
	}

	now = now.Add(31 * time.Second)
	if !l.Allow("ana") {
		t.Fatal("attempt not replenished")
	}

	var disabled *AttemptLimiter
	disabled.RecordFailure("x")
	if !disabled.Allow("x") {
		t.Fatal("nil limiter must allow")
	}
}
