package http

import (
	"time"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/shopspring/decimal"
)

// ProductRequest — тело POST/PUT /products. unitPrice принимается строкой или числом.
type ProductRequest struct {
	CategoryID   int64           `json:"categoryId" example:"1"`
	SKU          string          `json:"sku" example:"BOOK-TECH-1000"`
	Name         string          `json:"name" example:"Crash Course in Python"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"14.99"`
	ImageURL     string          `json:"imageUrl"`
	Active       bool            `json:"active"`
	UnitsInStock int32           `json:"unitsInStock" example:"100"`
}

type ProductResponse struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"categoryId"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	UnitPrice    string    `json:"unitPrice" example:"14.99"`
	ImageURL     string    `json:"imageUrl"`
	Active       bool      `json:"active"`
	UnitsInStock int32     `json:"unitsInStock"`
	DateCreated  time.Time `json:"dateCreated"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

type PageMeta struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

type ProductPageResponse struct {
	Products []ProductResponse `json:"products"`
	Page     PageMeta          `json:"page"`
}

type CategoryRequest struct {
	CategoryName string `json:"categoryName" example:"Books"`
}

type CategoryResponse struct {
	ID           int64  `json:"id"`
	CategoryName string `json:"categoryName"`
}

func (r *ProductRequest) toCreateReq() *usecase.CreateProductReq {
	return &usecase.CreateProductReq{
		CategoryID:   r.CategoryID,
		SKU:          r.SKU,
		Name:         r.Name,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		UnitsInStock: r.UnitsInStock,
		UnitPrice:    r.UnitPrice,
		Active:       r.Active,
	}
}

func (r *ProductRequest) toUpdateReq(id int64) *usecase.UpdateProductReq {
	return &usecase.UpdateProductReq{ID: id, CreateProductReq: *r.toCreateReq()}
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		ImageURL:     p.ImageURL,
		Active:       p.Active,
		UnitsInStock: p.UnitsInStock,
		DateCreated:  p.DateCreated,
		LastUpdated:  p.LastUpdated,
	}
}

func toProductPageResponse(page *domain.ProductPage) ProductPageResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for i := range page.Products {
		products = append(products, toProductResponse(&page.Products[i]))
	}

	return ProductPageResponse{
		Products: products,
		Page: PageMeta{
			Size:          page.Page.Size,
			Number:        page.Page.Number,
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages(),
		},
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, CategoryName: c.Name}
}
