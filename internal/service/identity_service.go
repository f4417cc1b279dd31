package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/identity"
	"github.com/spec-kit/clinic-booking/internal/observability"
	"github.com/spec-kit/clinic-booking/internal/repository"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Identity  domain.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	DisplayName     string
	Email           string
	Password        string
	ConfirmPassword string
}

// IdentityService coordinates registration, login and logout against the identity provider.
type IdentityService struct {
	provider    identity.Provider
	users       repository.UserRepository
	sessions    *SessionProvider
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	pending     *auth.MemoryRevocationStore
	attempts    *identity.AttemptLimiter
	locale      string
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// IdentityDependencies encapsulates the collaborators of the identity service.
type IdentityDependencies struct {
	Provider    identity.Provider
	Users       repository.UserRepository
	Sessions    *SessionProvider
	Revocations auth.RevocationStore
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Now         func() time.Time
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if deps.Now != nil {
		tokens.WithClock(deps.Now)
	}
	revocations := deps.Revocations
	if revocations == nil {
		revocations = auth.NewMemoryRevocationStore()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		provider:    deps.Provider,
		users:       deps.Users,
		sessions:    deps.Sessions,
		tokens:      tokens,
		revocations: revocations,
		pending:     auth.NewMemoryRevocationStore(),
		attempts:    identity.NewAttemptLimiter(cfg.Auth.LoginAttemptsPerMinute),
		locale:      cfg.Identity.Locale,
		logger:      logger,
		metrics:     deps.Metrics,
	}
}

// Register creates the account, stores the profile and signs the user in.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(in.DisplayName)
	if utf8.RuneCountInString(name) < identity.MinDisplayNameLength {
		return AuthResult{}, s.reject("register", identity.NewError(identity.ReasonInvalidDisplayName, nil))
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		s.metrics.RecordAuth("register", "rejected")
		return AuthResult{}, apperrors.NewValidationRejected("passwords do not match",
			map[string]any{"confirmPassword": "mismatch"})
	}

	id, err := s.provider.SignUp(ctx, in.Email, in.Password, name)
	if err != nil {
		return AuthResult{}, s.reject("register", err)
	}
	if err := s.ensureProfile(ctx, id, name); err != nil {
		s.metrics.RecordAuth("register", "failed")
		return AuthResult{}, err
	}
	id.DisplayName = domain.ResolveDisplayName(name, id.DisplayName)

	res, err := s.issue(id)
	if err != nil {
		return AuthResult{}, err
	}
	s.sessions.publish(ctx, id.UserID, &res.Identity, ChangeSignedUp)
	s.metrics.RecordAuth("register", "success")
	s.logger.Info("user registered", zap.String("user_id", id.UserID), zap.String("provider", s.provider.Name()))
	return res, nil
}

// Login verifies credentials and issues a session token. Only rejected credentials count
// against the per-account attempt limit.
func (s *IdentityService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	key := identity.NormalizeEmail(email)
	if !s.attempts.Allow(key) {
		return AuthResult{}, s.reject("login", identity.NewError(identity.ReasonTooManyRequests, nil))
	}

	id, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if identity.ReasonOf(err) != identity.ReasonNetwork {
			s.attempts.RecordFailure(key)
		}
		return AuthResult{}, s.reject("login", err)
	}

	profileName := ""
	user, err := s.users.GetByID(ctx, id.UserID)
	switch {
	case err == nil:
		profileName = user.DisplayName
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("profile lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
	}
	id.DisplayName = domain.ResolveDisplayName(profileName, id.DisplayName)

	res, err := s.issue(id)
	if err != nil {
		return AuthResult{}, err
	}
	s.sessions.publish(ctx, id.UserID, &res.Identity, ChangeSignedIn)
	s.metrics.RecordAuth("login", "success")
	return res, nil
}

// Logout revokes the session token and signs the user out of the provider.
// When the revocation store is unreachable the token id is kept in process memory
// so this instance still rejects it until expiry.
func (s *IdentityService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return apperrors.NewUnauthorized("no active session")
	}
	if sess.TokenID != "" {
		if err := s.revocations.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
			s.logger.Warn("token revocation failed; kept locally", zap.String("user_id", sess.UserID), zap.Error(err))
			_ = s.pending.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
		}
	}
	if err := s.provider.SignOut(ctx, sess.UserID); err != nil {
		s.logger.Warn("provider sign-out failed", zap.String("user_id", sess.UserID), zap.Error(err))
	}
	s.sessions.publish(ctx, sess.UserID, nil, ChangeSignedOut)
	s.metrics.RecordAuth("logout", "success")
	return nil
}

// CurrentIdentity returns the stored profile of the session's user.
func (s *IdentityService) CurrentIdentity(ctx context.Context, sess *domain.Session) (domain.Identity, error) {
	if sess == nil {
		return domain.Identity{}, apperrors.NewUnauthorized("no active session")
	}
	id, err := s.sessions.CurrentIdentity(ctx, sess.UserID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			// Provider accounts without a profile document still have a valid session.
			return sess.Identity, nil
		}
		return domain.Identity{}, err
	}
	return id, nil
}

// Authenticate resolves a bearer token into a session.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}
	if revoked, _ := s.pending.IsRevoked(ctx, claims.ID); revoked {
		return nil, apperrors.NewUnauthorized("session has ended")
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("revocation lookup failed", zap.String("token_id", claims.ID), zap.Error(err))
	}
	if revoked {
		return nil, apperrors.NewUnauthorized("session has ended")
	}
	sess := claims.Session()
	return &sess, nil
}

func (s *IdentityService) ensureProfile(ctx context.Context, id domain.Identity, name string) error {
	_, err := s.users.GetByID(ctx, id.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return storeError(err, "user")
	}
	err = s.users.Create(ctx, &domain.User{
		ID:          id.UserID,
		DisplayName: name,
		Email:       id.Email,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return storeError(err, "user")
	}
	return nil
}

func (s *IdentityService) issue(id domain.Identity) (AuthResult, error) {
	token, err := s.tokens.GenerateToken(id)
	if err != nil {
		return AuthResult{}, apperrors.NewInternalError(err)
	}
	return AuthResult{Identity: id, Token: token.Value, ExpiresAt: token.ExpiresAt}, nil
}

func (s *IdentityService) reject(op string, err error) error {
	reason := identity.ReasonOf(err)
	s.metrics.RecordAuth(op, string(reason))
	if reason == identity.ReasonNetwork {
		s.logger.Warn("identity provider failure", zap.String("operation", op), zap.Error(err))
	}
	return apperrors.NewAuthRejected(string(reason), identity.Message(reason, s.locale), identity.HTTPStatus(reason), err)
}
