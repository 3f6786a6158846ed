// Package tokens signs and verifies the identity persisted between runs, so
// a tampered or truncated stored session fails parsing instead of being
// trusted.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type IdentityClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewIdentityToken(id, name, email string, secret []byte) (string, error) {
	claims := IdentityClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

func IdentityFromToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	var claims IdentityClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
