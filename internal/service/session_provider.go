package service

import (
	"context"
	"errors"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

// Identity change reasons carried on EventIdentityChanged.
const (
	ChangeSignedUp  = "signed_up"
	ChangeSignedIn  = "signed_in"
	ChangeSignedOut = "signed_out"
)

// SessionProvider is the source of truth for who is signed in. Changes are broadcast
// as identities on sign-in and nil on sign-out.
type SessionProvider struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewSessionProvider builds the provider on the users collection and the event dispatcher.
func NewSessionProvider(users repository.UserRepository, dispatcher events.Dispatcher) *SessionProvider {
	return &SessionProvider{users: users, dispatcher: dispatcher}
}

// Subscribe registers onChange for identity changes and returns the unsubscribe handle.
func (p *SessionProvider) Subscribe(onChange func(*domain.Identity)) (unsubscribe func()) {
	return p.dispatcher.Subscribe(events.EventIdentityChanged, func(_ context.Context, e events.Event) error {
		payload, ok := e.Payload.(events.IdentityChangedPayload)
		if !ok {
			return errors.New("unexpected identity payload")
		}
		onChange(payload.Identity)
		return nil
	})
}

// CurrentIdentity returns the profile of userID, or NOT_FOUND.
func (p *SessionProvider) CurrentIdentity(ctx context.Context, userID string) (domain.Identity, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, storeError(err, "user")
	}
	return user.Identity(""), nil
}

func (p *SessionProvider) publish(ctx context.Context, userID string, identity *domain.Identity, reason string) {
	_ = p.dispatcher.Publish(ctx, events.NewEvent(events.EventIdentityChanged, userID, userID,
		events.IdentityChangedPayload{Identity: identity, Reason: reason}))
}
