package domain

import "time"

// DefaultDisplayName is shown when neither the profile nor the provider carry a name.
const DefaultDisplayName = "Usuario"

// User is the profile document stored in the users collection.
type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
}

// Identity is the public view of an authenticated user.
type Identity struct {
	UserID      string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Session is the explicit authentication context passed to workflow operations.
type Session struct {
	Identity
	TokenID   string
	ExpiresAt time.Time
}

// Identity returns the public identity of the profile, applying the display name fallback.
func (u *User) Identity(providerName string) Identity {
	return Identity{
		UserID:      u.ID,
		DisplayName: ResolveDisplayName(u.DisplayName, providerName),
		Email:       u.Email,
	}
}

// ResolveDisplayName picks the first non-empty candidate, or DefaultDisplayName.
func ResolveDisplayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return DefaultDisplayName
}
