package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryUseCase(t *testing.T) {
	uc := NewCategoryUC(newFakeCategoryRepo(), NewValidator(), logger.NewNopLogger())
	ctx := context.Background()

	books, err := uc.CreateCategory(ctx, &CreateCategoryReq{Name: " Books "})
	require.NoError(t, err)
	assert.Equal(t, "Books", books.Name)

	again, err := uc.CreateCategory(ctx, &CreateCategoryReq{Name: "Books"})
	require.NoError(t, err)
	assert.Equal(t, books.ID, again.ID)

	got, err := uc.GetCategory(ctx, books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", got.Name)

	_, err = uc.GetCategory(ctx, 100)
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)

	_, err = uc.GetCategory(ctx, -1)
	assert.ErrorIs(t, err, e.ErrInvalidID)

	_, err = uc.CreateCategory(ctx, &CreateCategoryReq{Name: ""})
	assert.ErrorIs(t, err, e.ErrCategoryNameRequired)

	list, err := uc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
