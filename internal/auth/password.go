package auth

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher computes and verifies bcrypt digests. bcrypt is slow on
// purpose; a semaphore bounds how many digests run at once so a burst of
// logins cannot starve the rest of the server.
type PasswordHasher struct {
	cost int
	sem  chan struct{}
}

// NewPasswordHasher builds a hasher with the given cost and concurrency bound.
func NewPasswordHasher(cost, maxConcurrent int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{cost: cost, sem: make(chan struct{}, maxConcurrent)}
}

// Hash produces a salted digest of the plaintext. Two calls with the same
// plaintext produce different digests; both verify true.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the digest. Any mismatch,
// including a malformed digest or a cancelled context, reports false.
func (h *PasswordHasher) Verify(ctx context.Context, password, hashed string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() {
	<-h.sem
}
