package usecase

import (
	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// CreateProductReq — запрос на создание товара.
type CreateProductReq struct {
	CategoryID   int64  `validate:"gt=0"`
	SKU          string `validate:"max=255"`
	Name         string `validate:"required,max=255"`
	Description  string `validate:"max=10000"`
	ImageURL     string `validate:"omitempty,max=2048"`
	UnitsInStock int32  `validate:"gte=0"`
	UnitPrice    decimal.Decimal
	Active       bool
}

// UpdateProductReq — полная замена полей товара (PUT).
type UpdateProductReq struct {
	ID int64 `validate:"gt=0"`
	CreateProductReq
}

// MaxProductsInfoIDs — сколько id можно запросить в GetProductsInfo за раз.
const MaxProductsInfoIDs = 100

// ProductsInfo — результат пакетного запроса товаров. Оба списка идут в порядке запроса.
type ProductsInfo struct {
	Products []domain.Product
	NotFound []int64
}

// UploadImageReq — запрос на загрузку изображения товара.
type UploadImageReq struct {
	ProductID int64
	Data      []byte // байты изображения
	MimeType  string // Content-Type, определённый по содержимому
	Name      string // оригинальное имя файла (для логов)
}

// UploadImageRes — результат загрузки изображения в MinIO.
type UploadImageRes struct {
	ObjectKey string
	URL       string
}

// CATEGORY USECASE

type CreateCategoryReq struct {
	Name string `validate:"required,max=255"`
}

// INFRASTRUCTURE

// WriteRawMessageReq — готовое к отправке в Kafka сообщение.
type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

// MAPPERS

func (r *CreateProductReq) ToProduct() *domain.Product {
	return domain.NewProduct(
		r.CategoryID,
		r.SKU,
		r.Name,
		r.Description,
		r.UnitPrice,
		r.ImageURL,
		r.Active,
		r.UnitsInStock,
	)
}

func (r *UpdateProductReq) ToProduct() *domain.Product {
	product := r.CreateProductReq.ToProduct()
	product.ID = r.ID
	return product
}

func NewUploadImageReq(productID int64, data []byte, mimeType string, name string) *UploadImageReq {
	return &UploadImageReq{
		ProductID: productID,
		Data:      data,
		MimeType:  mimeType,
		Name:      name,
	}
}

func NewUploadImageRes(objectKey string, url string) *UploadImageRes {
	return &UploadImageRes{
		ObjectKey: objectKey,
		URL:       url,
	}
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}
