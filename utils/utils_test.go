package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/choprek/models"
)

func init() {
	InitLogger()
}

func TestTokenRoundTripAndBlacklist(t *testing.T) {
	token, err := GenerateToken("user-jwt", models.RoleEmployee)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-jwt", claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)

	BlacklistToken(token)
	assert.True(t, IsTokenBlacklisted(token))
	_, err = ParseToken(token)
	assert.Error(t, err)

	_, err = ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestCleanupBlacklist(t *testing.T) {
	blacklistMutex.Lock()
	blacklistedTokens["expired-token"] = time.Now().Add(-time.Minute)
	blacklistedTokens["live-token"] = time.Now().Add(time.Hour)
	blacklistMutex.Unlock()

	assert.GreaterOrEqual(t, CleanupBlacklist(), 1)
	assert.False(t, IsTokenBlacklisted("expired-token"))
	assert.True(t, IsTokenBlacklisted("live-token"))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.RoleAdmin, PermDeliveryManage))
	assert.True(t, HasPermission(models.RoleEmployee, PermOrderCreate))
	assert.False(t, HasPermission(models.RoleEmployee, PermDeliveryManage))
	assert.False(t, HasPermission(models.RoleEmployee, PermReportRead))
	assert.False(t, HasPermission("guest", PermMenuRead))

	assert.True(t, IsValidRole(models.RoleEmployee))
	assert.False(t, IsValidRole("driver"))
}

func TestDateFormats(t *testing.T) {
	assert.True(t, IsISODate("2024-03-04"))
	assert.False(t, IsISODate("2024-02-30"))
	assert.False(t, IsISODate("04/03/2024"))
	assert.False(t, IsISODate(""))

	assert.True(t, IsClockTime("11:45"))
	assert.False(t, IsClockTime("24:00"))
	assert.False(t, IsClockTime("noon"))

	assert.True(t, IsISODate(Today()))
}
