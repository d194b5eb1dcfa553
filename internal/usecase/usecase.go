package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-service/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsInfo(ctx context.Context, ids []int64) (*ProductsInfo, error)
	ListProducts(ctx context.Context, page domain.Page) (*domain.ProductPage, error)
	ListProductsByCategory(ctx context.Context, categoryID int64, page domain.Page) (*domain.ProductPage, error)
	SearchProducts(ctx context.Context, name string, page domain.Page) (*domain.ProductPage, error)
	UploadProductImage(ctx context.Context, req *UploadImageReq) (*domain.Product, error)
}

type CategoryUC interface {
	CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
