package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

// LocalProvider keeps credentials as bcrypt hashes on the users collection.
type LocalProvider struct {
	users      repository.UserRepository
	bcryptCost int
	validate   *validator.Validate
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider builds a provider on the users repository.
func NewLocalProvider(users repository.UserRepository, bcryptCost int) *LocalProvider {
	return &LocalProvider{users: users, bcryptCost: bcryptCost, validate: validator.New()}
}

// Name identifies the provider in logs.
func (p *LocalProvider) Name() string { return "local" }

// SignUp creates the user profile with a password hash.
func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (domain.Identity, error) {
	email = NormalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return domain.Identity{}, NewError(ReasonInvalidEmail, nil)
	}
	if len(password) < MinPasswordLength {
		return domain.Identity{}, NewError(ReasonWeakPassword, nil)
	}

	hash, err := auth.HashPassword(password, p.bcryptCost)
	if err != nil {
		return domain.Identity{}, NewError(ReasonOperationNotAllowed, err)
	}

	user := &domain.User{
		DisplayName:  strings.TrimSpace(displayName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Identity{}, NewError(ReasonEmailInUse, nil)
		}
		return domain.Identity{}, NewError(ReasonNetwork, err)
	}
	return user.Identity(""), nil
}

// SignIn checks the password against the stored hash.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email = NormalizeEmail(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return domain.Identity{}, NewError(ReasonInvalidEmail, nil)
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Identity{}, NewError(ReasonUserNotFound, nil)
		}
		return domain.Identity{}, NewError(ReasonNetwork, err)
	}
	if user.Disabled {
		return domain.Identity{}, NewError(ReasonUserDisabled, nil)
	}
	if user.PasswordHash == "" {
		return domain.Identity{}, NewError(ReasonOperationNotAllowed, nil)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return domain.Identity{}, NewError(ReasonWrongPassword, nil)
	}
	return user.Identity(""), nil
}

// SignOut has nothing to release for local credentials.
func (p *LocalProvider) SignOut(context.Context, string) error { return nil }

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
