package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wecare-dev/wecare/internal/user"
)

type Claims struct {
	Sub  string    `json:"sub"`
	Role user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies the signed session token. It is the only place
// in the codebase that touches the signing secret.
type Codec struct {
	secret     []byte
	issuer     string
	audience   string
	signingAlg jwt.SigningMethod
}

var ErrEmptySecret = errors.New("token: signing secret is empty")

func NewCodec(secret, issuer, audience string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		signingAlg: jwt.SigningMethodHS256,
	}, nil
}

func (c *Codec) Issue(userID string, role user.Role, ttl time.Duration) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Sub:  userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(c.signingAlg, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify recovers the claims from a raw token string. Any failure yields
// exactly one of ErrExpired, ErrInvalidSignature or ErrMalformed.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signingAlg.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	// claims carry a role string from the wire; reject unknown ones here
	// rather than letting them travel further as a Role.
	if _, err := user.ParseRole(string(claims.Role)); err != nil {
		return nil, ErrMalformed
	}
	return &claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
