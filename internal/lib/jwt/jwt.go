package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by every access and refresh token.
type Claims struct {
	jwt.RegisteredClaims
	Identification string `json:"identification"`
	Role           string `json:"role,omitempty"`
}

// Codec signs and validates tokens with a process-wide key fixed at startup.
// Access and refresh tokens share the same structure and differ only in TTL.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) CreateAccessToken(identification, role string) (string, error) {
	return c.create(identification, role, c.accessTTL)
}

func (c *Codec) CreateRefreshToken(identification, role string) (string, error) {
	return c.create(identification, role, c.refreshTTL)
}

func (c *Codec) create(identification, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	// jti makes consecutive mints distinct even within one clock second
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Identification: identification,
		Role:           role,
	})

	return token.SignedString(c.secret)
}

// Validate checks the signature and expiry of tokenString. Any malformed,
// tampered or expired token yields ErrInvalidToken; claims are returned only
// on success.
func (c *Codec) Validate(tokenString string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Identification == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
