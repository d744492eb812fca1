package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend-go/internal/db"
)

func TestNormalizeSlug(t *testing.T) {
	tests := map[string]string{
		"Aromaterapia":              "aromaterapia",
		"Jabón Artesanal  de Miel!": "jabon-artesanal-de-miel",
		"  Niños & Bebés  ":         "ninos-bebes",
		"Crema - Día/Noche":         "crema-dianoche",
		"snake_case Ok":             "snake_case-ok",
		"¡¿?!":                      "",
		"Árbol de Té 100%":          "arbol-de-te-100",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSlug(in), "input %q", in)
	}
}

type MockSlugRegistry struct {
	mock.Mock
}

func (m *MockSlugRegistry) Claim(ctx context.Context, scope, slug string) error {
	return m.Called(ctx, scope, slug).Error(0)
}

func (m *MockSlugRegistry) Release(ctx context.Context, scope, slug string) error {
	return m.Called(ctx, scope, slug).Error(0)
}

func TestAllocateSlug_SuffixesOnCollision(t *testing.T) {
	reg := new(MockSlugRegistry)
	reg.On("Claim", mock.Anything, "categories", "aromaterapia").Return(db.ErrAlreadyExists).Once()
	reg.On("Claim", mock.Anything, "categories", "aromaterapia-1").Return(db.ErrAlreadyExists).Once()
	reg.On("Claim", mock.Anything, "categories", "aromaterapia-2").Return(nil).Once()

	slug, err := AllocateSlug(context.Background(), reg, "categories", "Aromaterapia")

	require.NoError(t, err)
	assert.Equal(t, "aromaterapia-2", slug)
	reg.AssertExpectations(t)
}

func TestAllocateSlug_SameNameTwice(t *testing.T) {
	reg := newMemSlugRegistry()
	ctx := context.Background()

	first, err := AllocateSlug(ctx, reg, "categories", "Aromaterapia")
	require.NoError(t, err)
	second, err := AllocateSlug(ctx, reg, "categories", "Aromaterapia")
	require.NoError(t, err)
	other, err := AllocateSlug(ctx, reg, "brands", "Aromaterapia")
	require.NoError(t, err)

	assert.Equal(t, "aromaterapia", first)
	assert.Equal(t, "aromaterapia-1", second)
	assert.Equal(t, "aromaterapia", other, "scopes are independent")
}

func TestAllocateSlug_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := AllocateSlug(ctx, newMemSlugRegistry(), "categories", "!!!")
	assert.ErrorIs(t, err, ErrInvalidInput)

	reg := new(MockSlugRegistry)
	reg.On("Claim", mock.Anything, "categories", "x").Return(errors.New("unavailable"))
	_, err = AllocateSlug(ctx, reg, "categories", "x")
	assert.ErrorContains(t, err, "unavailable")
	assert.NotErrorIs(t, err, ErrSlugExhausted)

	full := new(MockSlugRegistry)
	full.On("Claim", mock.Anything, "categories", mock.Anything).Return(db.ErrAlreadyExists)
	_, err = AllocateSlug(ctx, full, "categories", "x")
	assert.ErrorIs(t, err, ErrSlugExhausted)
	full.AssertNumberOfCalls(t, "Claim", MaxSlugAttempts)
}

func TestRenameSlug_KeepsSlugForSameBase(t *testing.T) {
	ctx := context.Background()
	reg := newMemSlugRegistry()
	_, _ = AllocateSlug(ctx, reg, "products", "Jabón")
	_, _ = AllocateSlug(ctx, reg, "products", "Jabón")

	r, err := renameSlug(ctx, reg, "products", "Jabón", "jabon-1", "JABÓN")
	require.NoError(t, err)
	assert.Equal(t, "jabon-1", r.Slug())

	r.settle(ctx, nil)
	assert.True(t, reg.held("products", "jabon-1"))
}

func TestRenameSlug_SettleAfterWrite(t *testing.T) {
	ctx := context.Background()
	reg := newMemSlugRegistry()
	_, _ = AllocateSlug(ctx, reg, "products", "Jabón")
	_, _ = AllocateSlug(ctx, reg, "products", "Jabón")

	r, err := renameSlug(ctx, reg, "products", "Jabón", "jabon-1", "Jabón de Rosa")
	require.NoError(t, err)
	assert.Equal(t, "jabon-de-rosa", r.Slug())
	assert.True(t, reg.held("products", "jabon-1"), "old slug kept until the write settles")
	assert.True(t, reg.held("products", "jabon-de-rosa"))

	r.settle(ctx, nil)
	assert.False(t, reg.held("products", "jabon-1"))
	assert.True(t, reg.held("products", "jabon-de-rosa"))
}

func TestRenameSlug_FailedWriteKeepsOldClaim(t *testing.T) {
	ctx := context.Background()
	reg := newMemSlugRegistry()
	_, _ = AllocateSlug(ctx, reg, "categories", "Aromaterapia")

	r, err := renameSlug(ctx, reg, "categories", "Aromaterapia", "aromaterapia", "Velas")
	require.NoError(t, err)
	r.settle(ctx, errors.New("write failed"))

	assert.True(t, reg.held("categories", "aromaterapia"))
	assert.False(t, reg.held("categories", "velas"))
}

func TestRenameSlug_DropsSuffixWhenBaseIsFree(t *testing.T) {
	ctx := context.Background()
	reg := newMemSlugRegistry()
	slug, err := AllocateSlug(ctx, reg, "brands", "Foo 1")
	require.NoError(t, err)
	require.Equal(t, "foo-1", slug)

	r, err := renameSlug(ctx, reg, "brands", "Foo 1", "foo-1", "Foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", r.Slug())
}
