package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-at-least-16-chars"

func newAuth(t *testing.T, password string) *service.AuthService {
	t.Helper()
	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(h)
	}
	return service.NewAuthService(hash, testSecret, 15*time.Minute, zap.NewNop())
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	auth := newAuth(t, "s3cret")

	resp, err := auth.IssueToken(context.Background(), &domain.TokenRequest{Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)

	claims, err := auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestAuthService_WrongPassword(t *testing.T) {
	auth := newAuth(t, "s3cret")

	_, err := auth.IssueToken(context.Background(), &domain.TokenRequest{Password: "guess"})
	var unauth *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauth)

	_, err = auth.IssueToken(context.Background(), &domain.TokenRequest{})
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}

func TestAuthService_Disabled(t *testing.T) {
	auth := newAuth(t, "")
	assert.False(t, auth.Enabled())

	_, err := auth.IssueToken(context.Background(), &domain.TokenRequest{Password: "anything"})
	var unauth *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauth)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	auth := newAuth(t, "s3cret")

	sign := func(secret string, claims service.JWTClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	valid := service.JWTClaims{
		Sub: "admin", Role: "admin", Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "spending-insights",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	_, err := auth.ValidateAccessToken(sign(testSecret, valid))
	require.NoError(t, err)

	otherSecret := sign("a-completely-different-secret", valid)
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongType := valid
	wrongType.Type = "refresh"
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	for name, tok := range map[string]string{
		"other secret": otherSecret,
		"expired":      sign(testSecret, expired),
		"wrong type":   sign(testSecret, wrongType),
		"wrong issuer": sign(testSecret, wrongIssuer),
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ValidateAccessToken(tok)
			var unauth *domain.ErrUnauthorized
			assert.ErrorAs(t, err, &unauth)
		})
	}
}
