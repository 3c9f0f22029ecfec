package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher hashea y verifica secretos (passwords y OTPs) con un digest salado y lento.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ErrSecretTooLong indica un secreto que bcrypt no puede procesar (mas de 72 bytes).
var ErrSecretTooLong = errors.New("secret exceeds 72 bytes")

// BcryptHasher implementa SecretHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

var _ SecretHasher = (*BcryptHasher)(nil)

// NewBcryptHasher acota cost al rango valido de bcrypt; 0 usa bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrSecretTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrSecretTooLong
		}
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
