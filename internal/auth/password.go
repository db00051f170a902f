package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts the digest algorithm so services never depend on
// bcrypt directly.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(plain, digest string) bool
}

// BcryptHasher hashes passwords with a configured bcrypt cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher, falling back to bcrypt's default cost when
// the configured value is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a digest for the plaintext password.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches verifies a plaintext password against its digest.
func (h *BcryptHasher) Matches(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
