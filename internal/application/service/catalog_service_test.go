package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCatalogService(t *testing.T) {
	store := newStore()
	svc := NewCatalogService(store.Services, nil)
	ctx := context.Background()

	web, err := svc.CreateService(ctx, staff, &CatalogItemInput{Name: strPtr(" Web Design "), Rate: decPtr("500"), Unit: strPtr("page")})
	require.NoError(t, err)
	assert.Equal(t, "Web Design", web.Name)
	assert.True(t, web.Active)

	inactive := false
	_, err = svc.CreateService(ctx, staff, &CatalogItemInput{Name: strPtr("Hosting"), Active: &inactive})
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.CreateService(ctx, staff, &CatalogItemInput{})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		_, err = svc.CreateService(ctx, staff, &CatalogItemInput{Name: strPtr("SEO"), Rate: decPtr("-1")})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("names are unique ignoring case", func(t *testing.T) {
		_, err := svc.CreateService(ctx, staff, &CatalogItemInput{Name: strPtr("web design")})
		assert.ErrorIs(t, err, apperror.ErrDuplicate)

		renamed, err := svc.UpdateService(ctx, staff, web.ID, &CatalogItemInput{Name: strPtr("WEB DESIGN")})
		require.NoError(t, err)
		assert.Equal(t, "WEB DESIGN", renamed.Name)
	})

	t.Run("list", func(t *testing.T) {
		all, err := svc.ListServices(ctx, "", false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := svc.ListServices(ctx, "", true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, web.ID, active[0].ID)

		found, err := svc.ListServices(ctx, "host", false)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteService(ctx, staff, web.ID), apperror.ErrForbidden)
		require.NoError(t, svc.DeleteService(ctx, admin, web.ID))
		_, err := svc.GetService(ctx, web.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
