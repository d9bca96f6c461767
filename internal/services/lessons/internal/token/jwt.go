package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "lessons"

type secretProvider interface {
	Get() []byte
}

type SecretString struct {
	secret []byte
}

func NewSecretString(secret string) *SecretString {
	return &SecretString{
		secret: []byte(secret),
	}
}

func (s *SecretString) Get() []byte {
	return s.secret
}

// JwtIssuer signs HS256 admin tokens accepted by middleware.Auth.
type JwtIssuer struct {
	secret secretProvider
	ttl    time.Duration
	now    func() time.Time
}

type JwtConfig struct {
	Secret secretProvider
	TTL    time.Duration
}

func NewJWTIssuer(cfg JwtConfig) *JwtIssuer {
	return &JwtIssuer{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

func (ti *JwtIssuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	if len(ti.secret.Get()) == 0 {
		return "", errors.New("signing secret is empty")
	}

	now := ti.now()
	claims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ti.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ti.ttl))
	}

	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret.Get())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tk, nil
}
