package invite

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// inviteAudience keeps session tokens from being redeemed as invites
const inviteAudience = "trip-invite"

// Claims are the signed contents of an invite token. Tokens are stateless:
// nothing is stored server-side, so an unexpired token can be redeemed by
// any number of distinct users.
type Claims struct {
	TripID    int64 `json:"trip_id"`
	InviterID int64 `json:"inviter_id"`
	jwt.RegisteredClaims
}

// tokenCodec signs and verifies invite tokens
type tokenCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func (c *tokenCodec) sign(tripID, inviterID int64) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := &Claims{
		TripID:    tripID,
		InviterID: inviterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{inviteAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invite token: %w", err)
	}
	return token, expiresAt, nil
}

func (c *tokenCodec) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(inviteAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TripID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
