package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtClaims mirrors Claims for the JWT encoding. Expiry rides in the
// registered "exp" claim so standard validation applies.
type jwtClaims struct {
	UID  int64  `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Codec) issueJWT(userID int64, role Role, expiresAt int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UID:  userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	})

	return token.SignedString(c.secret)
}

func (c *Codec) verifyJWT(token string) (Claims, bool) {
	claims := &jwtClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}

	role := Role(claims.Role)
	if claims.UID <= 0 || !role.Valid() || claims.ExpiresAt == nil {
		return Claims{}, false
	}

	return Claims{
		UserID:    claims.UID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, true
}
