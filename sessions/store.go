package sessions

import (
	"context"
	"time"
)

// Credential is a stored username and password hash pair.
type Credential struct {
	UserId         string
	Username       string
	HashedPassword string
	CreatedAt      time.Time
}

// Profile holds the optional details a user fills in after their first login.
type Profile struct {
	Description string
	Age         int
	Occupation  string
}

// Complete reports whether the profile setup has been done.
func (p Profile) Complete() bool {
	return p.Description != ""
}

// Claim is the identity carried inside a session token.
type Claim struct {
	Username string
	IssuedAt time.Time
}

// CredentialStore persists credentials. Insert must rely on a uniqueness constraint of the
// backing store and return ErrAlreadyExists when the username is taken.
type CredentialStore interface {
	Find(ctx context.Context, username string) (Credential, error)
	Insert(ctx context.Context, username, hashedPassword string) (Credential, error)
}

type ProfileStore interface {
	Profile(ctx context.Context, username string) (Profile, error)
	SaveProfile(ctx context.Context, username string, p Profile) error
}

// SessionStore is the key-value capability a request exposes for session state.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}
