package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/domain"
)

// FirebaseProvider delegates credentials to Firebase Authentication. Password checks go through
// the Identity Toolkit API; the Admin SDK revokes refresh tokens on sign-out.
type FirebaseProvider struct {
	admin   *fbauth.Client
	toolkit *identitytoolkit.RelyingpartyService
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider initializes the Firebase app and both API clients.
func NewFirebaseProvider(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client: %w", err)
	}

	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("firebase: identity toolkit: %w", err)
	}

	return &FirebaseProvider{admin: admin, toolkit: svc.Relyingparty}, nil
}

// Name identifies the provider in logs.
func (p *FirebaseProvider) Name() string { return "firebase" }

// SignUp creates the Firebase account.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (domain.Identity, error) {
	resp, err := p.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       NormalizeEmail(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}).Context(ctx).Do()
	if err != nil {
		return domain.Identity{}, mapFirebaseError(err)
	}
	return domain.Identity{UserID: resp.LocalId, DisplayName: resp.DisplayName, Email: resp.Email}, nil
}

// SignIn verifies the password with Firebase.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             NormalizeEmail(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return domain.Identity{}, mapFirebaseError(err)
	}
	return domain.Identity{UserID: resp.LocalId, DisplayName: resp.DisplayName, Email: resp.Email}, nil
}

// SignOut revokes the user's Firebase refresh tokens.
func (p *FirebaseProvider) SignOut(ctx context.Context, userID string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, userID); err != nil {
		if fbauth.IsUserNotFound(err) {
			return NewError(ReasonUserNotFound, err)
		}
		return NewError(ReasonNetwork, err)
	}
	return nil
}

var firebaseReasons = []struct {
	prefix string
	reason Reason
}{
	{"EMAIL_EXISTS", ReasonEmailInUse},
	{"INVALID_EMAIL", ReasonInvalidEmail},
	{"MISSING_EMAIL", ReasonInvalidEmail},
	{"WEAK_PASSWORD", ReasonWeakPassword},
	{"MISSING_PASSWORD", ReasonWeakPassword},
	{"OPERATION_NOT_ALLOWED", ReasonOperationNotAllowed},
	{"PASSWORD_LOGIN_DISABLED", ReasonOperationNotAllowed},
	{"EMAIL_NOT_FOUND", ReasonUserNotFound},
	{"INVALID_PASSWORD", ReasonWrongPassword},
	{"INVALID_LOGIN_CREDENTIALS", ReasonWrongPassword},
	{"USER_DISABLED", ReasonUserDisabled},
	{"TOO_MANY_ATTEMPTS_TRY_LATER", ReasonTooManyRequests},
}

// mapFirebaseError classifies Identity Toolkit failures by their message code.
func mapFirebaseError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return NewError(ReasonNetwork, err)
	}
	candidates := []string{apiErr.Message}
	for _, item := range apiErr.Errors {
		candidates = append(candidates, item.Message, item.Reason)
	}
	for _, msg := range candidates {
		for _, fr := range firebaseReasons {
			if strings.HasPrefix(strings.TrimSpace(msg), fr.prefix) {
				return NewError(fr.reason, err)
			}
		}
	}
	if apiErr.Code == 429 {
		return NewError(ReasonTooManyRequests, err)
	}
	return NewError(ReasonNetwork, err)
}
