package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

const stateTTL = 5 * time.Minute

// stateSigner issues and verifies the short-lived state value embedded in
// the authorization URL. The value is an HS256 JWT carrying only a nonce
// and an expiry; nothing is stored server-side.
type stateSigner struct {
	secret []byte
	now    func() time.Time
}

func newStateSigner(secret string, now func() time.Time) *stateSigner {
	if now == nil {
		now = time.Now
	}
	return &stateSigner{secret: []byte(secret), now: now}
}

func (s *stateSigner) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("state nonce: %w", err)
	}

	issued := s.now()
	claims := jwt.MapClaims{
		"jti": hex.EncodeToString(nonce),
		"iat": issued.Unix(),
		"exp": issued.Add(stateTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry of an echoed-back state value.
func (s *stateSigner) Verify(state string) error {
	tkn, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOAuthState, err)
	}
	return nil
}
