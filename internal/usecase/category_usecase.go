package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
)

type CategoryUseCase struct {
	categoryRepo CategoryRepository
	validator    *Validator
	logger       logger.Logger
}

func NewCategoryUC(categoryRepo CategoryRepository, validator *Validator, logger logger.Logger) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
		validator:    validator,
		logger:       logger,
	}
}

// CreateCategory идемпотентно создаёт категорию по имени.
func (c *CategoryUseCase) CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error) {
	const op = "CategoryUseCase.CreateCategory"

	if err := c.validator.ValidateCategory(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	category, err := c.categoryRepo.Create(ctx, domain.NewCategory(req.Name))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (c *CategoryUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	const op = "CategoryUseCase.GetCategory"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (c *CategoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CategoryUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}
