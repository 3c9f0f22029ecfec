package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL es la vigencia de sesion por defecto (36000 minutos).
const DefaultTokenTTL = 36000 * time.Minute

// TokenIssuer emite y valida tokens de sesion JWT firmados con HS256.
// Los tokens no se persisten; solo llevan sub, iat y exp.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SessionToken es el token emitido tras registro o login.
type SessionToken struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue firma un token para accountID.
func (t *TokenIssuer) Issue(accountID string) (SessionToken, error) {
	if len(t.secret) == 0 {
		return SessionToken{}, errors.New("token secret not configured")
	}
	if strings.TrimSpace(accountID) == "" {
		return SessionToken{}, errors.New("account id is required")
	}
	now := t.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, IssuedAt: now, ExpiresAt: expiresAt}, nil
}

// Validate devuelve el accountID del token o ErrInvalidToken.
func (t *TokenIssuer) Validate(token string) (string, error) {
	if len(t.secret) == 0 || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
