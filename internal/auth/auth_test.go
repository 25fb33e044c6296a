package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/models"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter2"))
}

func TestTokenIssueAndVerify(t *testing.T) {
	ti := NewTokenIssuer("test-secret")
	acc := &models.Account{ID: uuid.New(), Role: models.RoleManager}

	token, err := ti.Issue(acc, time.Now())
	require.NoError(t, err)

	claims, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	acc := &models.Account{ID: uuid.New(), Role: models.RoleMember}
	token, err := NewTokenIssuer("secret-a").Issue(acc, time.Now())
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret")
	acc := &models.Account{ID: uuid.New(), Role: models.RoleOwner}

	token, err := ti.Issue(acc, time.Now().Add(-2*SessionTTL))
	require.NoError(t, err)

	_, err = ti.Verify(token)
	assert.Error(t, err)
}

func TestNewActionToken(t *testing.T) {
	now := time.Now()
	tok1, exp, err := NewActionToken(now)
	require.NoError(t, err)
	tok2, _, err := NewActionToken(now)
	require.NoError(t, err)

	assert.Len(t, tok1, 64)
	assert.NotEqual(t, tok1, tok2)
	assert.Equal(t, now.Add(ActionTokenTTL), exp)
}
