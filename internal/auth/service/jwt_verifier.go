package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"go.uber.org/zap"
)

// claims accepts the user id as the standard subject or as a userID claim.
type claims struct {
	UserID string `json:"userID,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 bearer tokens signed with AUTH_JWT_SECRET.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(cfg config.Config, log *zap.Logger) (*JWTVerifier, error) {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("AUTH_JWT_SECRET is required in production")
		}
		log.Warn("AUTH_JWT_SECRET is empty; every API request will be rejected")
	}
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}, nil
}

func (v *JWTVerifier) Verify(token string) (authdomain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return authdomain.Principal{}, authdomain.ErrMissingToken
	}
	if len(v.secret) == 0 {
		return authdomain.Principal{}, authdomain.ErrInvalidToken
	}

	var c claims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authdomain.Principal{}, authdomain.ErrTokenExpired
		}
		return authdomain.Principal{}, fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}

	userID := strings.TrimSpace(c.Subject)
	if userID == "" {
		userID = strings.TrimSpace(c.UserID)
	}
	if userID == "" {
		return authdomain.Principal{}, fmt.Errorf("%w: no subject", authdomain.ErrInvalidToken)
	}

	principal := authdomain.Principal{UserID: userID}
	if c.ExpiresAt != nil {
		principal.ExpiresAt = c.ExpiresAt.Time
	}
	return principal, nil
}

// Sign issues an HS256 token for userID. Used by the dev token command and
// tests.
func Sign(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}
