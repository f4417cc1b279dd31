// Package identity implements the sign-up and sign-in boundary against an identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

// Reason is a provider error code.
type Reason string

const (
	ReasonEmailInUse          Reason = "email-already-in-use"
	ReasonInvalidEmail        Reason = "invalid-email"
	ReasonWeakPassword        Reason = "weak-password"
	ReasonInvalidDisplayName  Reason = "invalid-display-name"
	ReasonOperationNotAllowed Reason = "operation-not-allowed"
	ReasonUserNotFound        Reason = "user-not-found"
	ReasonWrongPassword       Reason = "wrong-password"
	ReasonUserDisabled        Reason = "user-disabled"
	ReasonTooManyRequests     Reason = "too-many-requests"
	ReasonNetwork             Reason = "network-request-failed"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// MinDisplayNameLength is the shortest display name accepted at sign-up.
const MinDisplayNameLength = 2

// Provider authenticates credentials. Implementations return *Error for every rejection.
type Provider interface {
	Name() string
	SignUp(ctx context.Context, email, password, displayName string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignOut(ctx context.Context, userID string) error
}

// Error is a provider rejection carrying its reason code.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Reason, e.Err)
	}
	return "identity: " + string(e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error.
func NewError(reason Reason, err error) error {
	return &Error{Reason: reason, Err: err}
}

// ReasonOf extracts the reason code of err, or ReasonNetwork for unclassified failures.
func ReasonOf(err error) Reason {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Reason
	}
	return ReasonNetwork
}
