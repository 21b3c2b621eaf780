package auth

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cameronmore/go-authsite/sessions"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// bcrypt ignores everything past this many bytes.
const maxPasswordBytes = 72

// BcryptHasher hashes and verifies passwords with bcrypt. At most `workers` hashes run at
// once; other callers wait for a slot or for their context to end.
type BcryptHasher struct {
	cost int
	pool *semaphore.Weighted
}

// NewBcryptHasher returns a hasher with the given cost and pool size. Out-of-range values
// fall back to bcrypt.DefaultCost and runtime.NumCPU().
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BcryptHasher{
		cost: cost,
		pool: semaphore.NewWeighted(int64(workers)),
	}
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a self-describing digest with a fresh salt.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", sessions.ErrEmptyPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", sessions.ErrPasswordTooLong
	}
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.pool.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest does not match, and
// neither does a plaintext that Hash would have refused. The error is only set when ctx
// ends before a worker slot frees up.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	// bcrypt only reads the first 72 bytes, longer input would match its own prefix
	if plaintext == "" || len(plaintext) > maxPasswordBytes {
		return false, nil
	}
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.pool.Release(1)

	// Any error, mismatch or a corrupt digest alike, means no match.
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil, nil
}

// NeedsRehash reports whether digest was produced with a lower cost than the current one.
func (h *BcryptHasher) NeedsRehash(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return true
	}
	return cost < h.cost
}
