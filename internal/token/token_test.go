package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizctl/internal/dependencies/mocks"
	"github.com/quizhub/quizctl/internal/model"
)

func mintToken(t *testing.T, userID model.UserID, role model.Role, exp time.Time) string {
	t.Helper()

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecodeReadsClaims(t *testing.T) {
	exp := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := mintToken(t, 42, model.RoleModerator, exp)

	claims, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, model.UserID(42), claims.UserID)
	assert.Equal(t, model.RoleModerator, claims.Role)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not-a-token",
		"only.two",
		"a.b.c.d",
		"aaaa.!!!!.cccc",
	} {
		_, err := Decode(raw)
		assert.Error(t, err, "token %q should not decode", raw)
	}
}

func TestIsValidFutureExpiry(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	raw := mintToken(t, 1, model.RolePlayer, clk.Now().Add(time.Hour))

	assert.True(t, IsValid(raw, clk))
}

func TestIsValidExpired(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	raw := mintToken(t, 1, model.RolePlayer, clk.Now().Add(-time.Minute))

	assert.False(t, IsValid(raw, clk))
}

func TestIsValidExpiresAsClockAdvances(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	raw := mintToken(t, 1, model.RolePlayer, clk.Now().Add(time.Hour))

	assert.True(t, IsValid(raw, clk))
	clk.Advance(2 * time.Hour)
	assert.False(t, IsValid(raw, clk))
}

func TestIsValidNoExpClaim(t *testing.T) {
	clk := mocks.NewMockClock(time.Now())
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.False(t, IsValid(raw, clk))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := mintToken(t, 1, model.RolePlayer, exp)

	assert.True(t, ExpiresAt(raw).Equal(exp))
	assert.True(t, ExpiresAt("garbage").IsZero())
}
