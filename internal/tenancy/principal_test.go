package tenancy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

func TestAssertScope(t *testing.T) {
	tenant := uuid.New()
	other := uuid.New()
	p := Principal{AccountID: uuid.New(), TenantID: tenant, Role: models.RoleManager}

	assert.NoError(t, p.AssertScope(tenant))
	assert.ErrorIs(t, p.AssertScope(other), apperr.ErrForbidden)

	// An owner without a company yet is in no scope at all.
	fresh := Principal{AccountID: uuid.New(), Role: models.RoleOwner}
	assert.ErrorIs(t, fresh.AssertScope(tenant), apperr.ErrForbidden)
}

func TestAssertOwnership(t *testing.T) {
	tenant := uuid.New()
	me := uuid.New()
	p := Principal{AccountID: me, TenantID: tenant, Role: models.RoleManager}

	assert.NoError(t, p.AssertOwnership(tenant, me))
	assert.ErrorIs(t, p.AssertOwnership(tenant, uuid.New()), apperr.ErrForbidden)
	// Cross-tenant trumps ownership.
	assert.ErrorIs(t, p.AssertOwnership(uuid.New(), me), apperr.ErrForbidden)
}

func TestDueSoonWindow(t *testing.T) {
	tests := []struct {
		role models.Role
		want time.Duration
	}{
		{models.RoleOwner, 7 * 24 * time.Hour},
		{models.RoleManager, 3 * 24 * time.Hour},
		{models.RoleMember, 3 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, err := Principal{Role: tt.role}.DueSoonWindow()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Principal{Role: models.Role("ghost")}.DueSoonWindow()
	assert.Error(t, err)
}

func TestFromAccount(t *testing.T) {
	tenantID := uuid.New()

	t.Run("owner with tenant", func(t *testing.T) {
		acc := &models.Account{ID: uuid.New(), Role: models.RoleOwner}
		p, err := FromAccount(acc, &models.Tenant{ID: tenantID, OwnerID: acc.ID})
		require.NoError(t, err)
		assert.Equal(t, tenantID, p.TenantID)
		assert.True(t, p.HasTenant())
	})

	t.Run("owner before company creation", func(t *testing.T) {
		acc := &models.Account{ID: uuid.New(), Role: models.RoleOwner}
		p, err := FromAccount(acc, nil)
		require.NoError(t, err)
		assert.False(t, p.HasTenant())
	})

	t.Run("member carries account tenant", func(t *testing.T) {
		acc := &models.Account{ID: uuid.New(), Role: models.RoleMember, TenantID: &tenantID}
		p, err := FromAccount(acc, nil)
		require.NoError(t, err)
		assert.Equal(t, tenantID, p.TenantID)
	})

	t.Run("member without tenant is rejected", func(t *testing.T) {
		acc := &models.Account{ID: uuid.New(), Role: models.RoleMember}
		_, err := FromAccount(acc, nil)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}
