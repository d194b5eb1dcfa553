package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога — одну строку таблицы product.
// Структура пассивна: ID, DateCreated и LastUpdated проставляет слой хранения.
type Product struct {
	ID           int64
	CategoryID   int64
	SKU          string
	Name         string
	Description  string
	UnitPrice    decimal.Decimal // точная десятичная цена, не float
	ImageURL     string
	Active       bool
	UnitsInStock int32
	DateCreated  time.Time
	LastUpdated  time.Time
}

func NewProduct(
	categoryID int64,
	sku string,
	name string,
	description string,
	unitPrice decimal.Decimal,
	imageURL string,
	active bool,
	unitsInStock int32,
) *Product {
	return &Product{
		CategoryID:   categoryID,
		SKU:          sku,
		Name:         name,
		Description:  description,
		UnitPrice:    unitPrice,
		ImageURL:     imageURL,
		Active:       active,
		UnitsInStock: unitsInStock,
	}
}

// IsNew — товар ещё не сохранялся.
func (p *Product) IsNew() bool {
	return p.ID == 0
}
