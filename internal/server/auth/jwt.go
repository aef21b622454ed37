// Package auth mints and verifies the HS256 access tokens carried by
// front-end and admin clients.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the actor a request is made on behalf of. Admin
// tokens may reconcile rosters, archive plates and read audit history.
type Claims struct {
	jwt.RegisteredClaims
	ActorID int64 `json:"actor_id"`
	Admin   bool  `json:"admin,omitempty"`
}

func GenerateToken(actorID int64, admin bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actorID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		ActorID: actorID,
		Admin:   admin,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
