package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultMaxAge is how long a minted session token stays valid.
const DefaultMaxAge = 12 * time.Hour

// Tokens longer than this never came from Mint and would not fit in a cookie anyway.
const maxTokenLength = 4096

// Codec mints and opens session tokens. A token is an HS256-signed JWT carrying the
// username as subject, so its contents are readable by the holder but cannot be forged
// without the key.
type Codec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type CodecOption func(*Codec)

// WithMaxAge sets the token lifetime. Zero disables expiry.
func WithMaxAge(d time.Duration) CodecOption {
	return func(c *Codec) {
		c.maxAge = d
	}
}

func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec returns a Codec keyed by key. The key is copied; an empty key is a
// configuration error.
func NewCodec(key []byte, opts ...CodecOption) (*Codec, error) {
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		key:    append([]byte(nil), key...),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.maxAge > 0 {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
	}
	c.parser = jwt.NewParser(parserOpts...)
	return c, nil
}

func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Mint signs claim into a token. A zero IssuedAt is replaced by the current time. Tokens
// that Open would refuse for their length are never handed out.
func (c *Codec) Mint(claim Claim) (string, error) {
	if claim.Username == "" {
		return "", ErrEmptyUsername
	}
	issuedAt := claim.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}

	registered := jwt.RegisteredClaims{
		Subject:  claim.Username,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	if c.maxAge > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(c.maxAge))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	if len(token) > maxTokenLength {
		return "", ErrTokenTooLong
	}
	return token, nil
}

// Open verifies token and returns its claim. Every failure, whether a bad signature, a
// malformed token or an expired one, is reported as ErrInvalidSignature.
func (c *Codec) Open(token string) (Claim, error) {
	if token == "" || len(token) > maxTokenLength {
		return Claim{}, ErrInvalidSignature
	}

	var registered jwt.RegisteredClaims
	parsed, err := c.parser.ParseWithClaims(token, &registered, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !parsed.Valid || registered.Subject == "" {
		return Claim{}, ErrInvalidSignature
	}

	claim := Claim{Username: registered.Subject}
	if registered.IssuedAt != nil {
		claim.IssuedAt = registered.IssuedAt.Time.UTC()
	}
	return claim, nil
}
