package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the verified actor carried by a bearer token.
type Identity struct {
	SubjectID string
	Role      Role
}

// TokenConfig holds the signing parameters. It is passed in explicitly;
// the codec never reads ambient configuration.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Claims is the identity token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed identity tokens. Stateless; validity
// is purely cryptographic plus expiry.
type Codec struct {
	cfg TokenConfig
	now func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec validates the configuration and constructs a Codec.
func NewCodec(cfg TokenConfig, opts ...CodecOption) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	c := &Codec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs an HS256 token for the identity with expiry now+TTL.
func (c *Codec) Issue(identity Identity) (string, time.Time, error) {
	subject := strings.TrimSpace(identity.SubjectID)
	if subject == "" {
		return "", time.Time{}, errors.New("auth: subject id is required")
	}
	if !identity.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: role %q", ErrInvalidInput, identity.Role)
	}

	now := c.now().UTC()
	expiresAt := now.Add(c.cfg.TTL)
	claims := Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and claims and returns the carried
// identity. Every failure mode collapses into ErrInvalidToken.
func (c *Codec) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.cfg.Secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if err := c.validateClaims(claims); err != nil {
		return Identity{}, ErrInvalidToken
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{SubjectID: claims.Subject, Role: role}, nil
}

func (c *Codec) validateClaims(claims *Claims) error {
	if c.cfg.Issuer != "" && claims.Issuer != c.cfg.Issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := c.now().UTC()
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
