package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreate_RoundsPrice(t *testing.T) {
	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, "Keyboard", 49.995)
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Price)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", got.Name)
}

func TestCatalogCreate_Validation(t *testing.T) {
	svc := &CatalogService{Repo: newTestRepo(t)}

	_, err := svc.Create(context.Background(), "", -1)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
}

func TestCatalogUpdate_MissingProduct(t *testing.T) {
	svc := &CatalogService{Repo: newTestRepo(t)}

	_, err := svc.Update(context.Background(), 42, "Mouse", 10)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogDelete(t *testing.T) {
	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	p, err := svc.Create(ctx, "Mouse", 19.99)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrProductNotFound)
}

func TestCatalogList_Pages(t *testing.T) {
	svc := &CatalogService{Repo: newTestRepo(t)}
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, name, 1)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].Name)

	page, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].Name)
}
