package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier(config.Config{AuthJWTSecret: testSecret}, zap.NewNop())
	require.NoError(t, err)
	return v
}

func TestVerify_Subject(t *testing.T) {
	token, err := Sign(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	principal, err := newVerifier(t).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.False(t, principal.ExpiresAt.IsZero())
}

func TestVerify_UserIDClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": "user-2",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	principal, err := newVerifier(t).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", principal.UserID)
}

func TestVerify_Rejects(t *testing.T) {
	expired, err := Sign(testSecret, "user-1", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := Sign("other-secret", "user-1", time.Hour)
	require.NoError(t, err)
	noSubject, err := Sign(testSecret, "", time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	v := newVerifier(t)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, authdomain.ErrMissingToken)

	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, authdomain.ErrTokenExpired)

	for name, token := range map[string]string{"wrong key": wrongKey, "no subject": noSubject, "no expiry": noExpiry, "garbage": "a.b.c"} {
		_, err := v.Verify(token)
		assert.Truef(t, errors.Is(err, authdomain.ErrInvalidToken), "%s: %v", name, err)
	}
}

func TestNewJWTVerifier_RequiresSecretInProduction(t *testing.T) {
	_, err := NewJWTVerifier(config.Config{Environment: "production"}, zap.NewNop())
	assert.Error(t, err)

	v, err := NewJWTVerifier(config.Config{Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	_, err = v.Verify("anything")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}
