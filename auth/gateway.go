package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/cameronmore/go-authsite/sessions"
	"golang.org/x/crypto/bcrypt"
)

// Usernames travel inside every session token, so they are kept short.
const maxUsernameBytes = 64

const decoyPassword = "decoy password for unknown users"

// Hasher is the password hashing capability the Gateway needs.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
	NeedsRehash(digest string) bool
}

// Gateway is the single place that decides whether a request is authenticated. It owns no
// mutable state; sessions live in the SessionStore handed to each call.
type Gateway struct {
	store      sessions.CredentialStore
	hasher     Hasher
	codec      *sessions.Codec
	sessionKey string
	decoy      string
}

// NewGateway hashes the decoy digest used for unknown users up front, so the first failed
// login costs the same as every later one.
func NewGateway(store sessions.CredentialStore, hasher Hasher, codec *sessions.Codec) *Gateway {
	return &Gateway{
		store:      store,
		hasher:     hasher,
		codec:      codec,
		sessionKey: sessions.SessionCookieName,
		decoy:      newDecoyDigest(hasher),
	}
}

// Register creates a credential for username. A name that is already present, or that
// another registration wins concurrently, yields ErrUsernameTaken.
func (g *Gateway) Register(ctx context.Context, username, password string) (sessions.Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return sessions.Credential{}, sessions.ErrEmptyUsername
	}
	if len(username) > maxUsernameBytes {
		return sessions.Credential{}, sessions.ErrUsernameTooLong
	}
	if password == "" {
		return sessions.Credential{}, sessions.ErrEmptyPassword
	}

	_, err := g.store.Find(ctx, username)
	if err == nil {
		return sessions.Credential{}, sessions.ErrUsernameTaken
	}
	if !errors.Is(err, sessions.ErrUserNotFound) {
		return sessions.Credential{}, err
	}

	digest, err := g.hasher.Hash(ctx, password)
	if err != nil {
		return sessions.Credential{}, err
	}

	c, err := g.store.Insert(ctx, username, digest)
	if errors.Is(err, sessions.ErrAlreadyExists) {
		return sessions.Credential{}, sessions.ErrUsernameTaken
	}
	if err != nil {
		return sessions.Credential{}, err
	}
	return c, nil
}

// Login checks the password and, on success, stores a fresh session token in sess. An
// unknown user and a wrong password both return ErrInvalidCredentials after the same
// amount of hashing work.
func (g *Gateway) Login(ctx context.Context, sess sessions.SessionStore, username, password string) (sessions.Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return sessions.Credential{}, sessions.ErrInvalidCredentials
	}

	c, err := g.store.Find(ctx, username)
	if errors.Is(err, sessions.ErrUserNotFound) {
		if _, err := g.hasher.Verify(ctx, password, g.decoy); err != nil {
			return sessions.Credential{}, err
		}
		return sessions.Credential{}, sessions.ErrInvalidCredentials
	}
	if err != nil {
		return sessions.Credential{}, err
	}

	ok, err := g.hasher.Verify(ctx, password, c.HashedPassword)
	if err != nil {
		return sessions.Credential{}, err
	}
	if !ok {
		return sessions.Credential{}, sessions.ErrInvalidCredentials
	}
	if g.hasher.NeedsRehash(c.HashedPassword) {
		log := logutil.GetOrDefault(ctx)
		log.Info().Str("user_id", c.UserId).Msg("Credential uses an outdated work factor")
	}

	token, err := g.codec.Mint(sessions.Claim{Username: c.Username})
	if err != nil {
		return sessions.Credential{}, err
	}
	sess.Set(g.sessionKey, token)
	return c, nil
}

// Authenticate returns the username carried by the session in sess. A missing, forged or
// expired token is reported as anonymous, never as an error.
func (g *Gateway) Authenticate(ctx context.Context, sess sessions.SessionStore) (string, bool) {
	token, ok := sess.Get(g.sessionKey)
	if !ok {
		return "", false
	}
	claim, err := g.codec.Open(token)
	if err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Debug().Err(err).Msg("Ignoring invalid session token")
		return "", false
	}
	return claim.Username, true
}

// Logout tells the client to forget its session token. Tokens are not tracked
// server-side, so a copy kept by the client stays valid until it expires.
func (g *Gateway) Logout(sess sessions.SessionStore) {
	sess.Delete(g.sessionKey)
}

func newDecoyDigest(hasher Hasher) string {
	digest, err := hasher.Hash(context.Background(), decoyPassword)
	if err == nil {
		return digest
	}
	// still a real bcrypt digest, so unknown users keep paying for a comparison
	fallback, _ := bcrypt.GenerateFromPassword([]byte(decoyPassword), bcrypt.DefaultCost)
	return string(fallback)
}
