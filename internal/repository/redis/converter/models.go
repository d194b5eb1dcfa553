package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRedisModel — JSON-представление карточки товара в кэше.
// Цена сериализуется строкой, чтобы не терять точность.
type ProductRedisModel struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ImageURL     string          `json:"image_url"`
	Active       bool            `json:"active"`
	UnitsInStock int32           `json:"units_in_stock"`
	DateCreated  time.Time       `json:"date_created"`
	LastUpdated  time.Time       `json:"last_updated"`
}
