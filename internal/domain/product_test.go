package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_ZeroValueIsUnsaved(t *testing.T) {
	var p Product

	assert.True(t, p.IsNew())
	assert.Zero(t, p.ID)
	assert.True(t, p.DateCreated.IsZero())
	assert.True(t, p.LastUpdated.IsZero())
}

func TestNewProduct_FieldsReadBack(t *testing.T) {
	price := decimal.RequireFromString("18.99")

	p := NewProduct(3, "BOOK-TECH-1000", "Crash Course in Python", "Learn Python", price, "assets/images/products/books/book-1000.png", true, 100)

	assert.True(t, p.IsNew())
	assert.Equal(t, int64(3), p.CategoryID)
	assert.Equal(t, "BOOK-TECH-1000", p.SKU)
	assert.Equal(t, "Crash Course in Python", p.Name)
	assert.Equal(t, "Learn Python", p.Description)
	assert.True(t, price.Equal(p.UnitPrice))
	assert.Equal(t, "assets/images/products/books/book-1000.png", p.ImageURL)
	assert.True(t, p.Active)
	assert.Equal(t, int32(100), p.UnitsInStock)
	assert.True(t, p.DateCreated.IsZero())
}

func TestProduct_AssignmentRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	cases := []Product{
		{},
		{ID: 1, CategoryID: 7, SKU: "A", Name: "a", UnitPrice: decimal.RequireFromString("0.01"), UnitsInStock: 0},
		{ID: 9000, CategoryID: 1, SKU: "MUG-100", Name: "Mug", Description: "ceramic", UnitPrice: decimal.RequireFromString("123456789.99"),
			ImageURL: "https://cdn/x.png", Active: true, UnitsInStock: 2147483647, DateCreated: now, LastUpdated: now.Add(time.Second)},
	}

	for _, want := range cases {
		var got Product
		got.ID = want.ID
		got.CategoryID = want.CategoryID
		got.SKU = want.SKU
		got.Name = want.Name
		got.Description = want.Description
		got.UnitPrice = want.UnitPrice
		got.ImageURL = want.ImageURL
		got.Active = want.Active
		got.UnitsInStock = want.UnitsInStock
		got.DateCreated = want.DateCreated
		got.LastUpdated = want.LastUpdated

		assert.Equal(t, want, got)
	}
}

func TestProduct_CategoryReference(t *testing.T) {
	p := &Product{}
	p.CategoryID = 42

	assert.Equal(t, int64(42), p.CategoryID)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 0, Size: DefaultPageSize}, NewPage(-1, 0))
	assert.Equal(t, Page{Number: 2, Size: MaxPageSize}, NewPage(2, 1000))
	assert.Equal(t, int64(40), NewPage(2, 20).Offset())

	huge := NewPage(100000000000000000, MaxPageSize)
	assert.Equal(t, MaxPageNumber, huge.Number)
	assert.Equal(t, int64(MaxPageNumber)*MaxPageSize, huge.Offset())
	assert.Positive(t, huge.Offset())
}

func TestProductPage_TotalPages(t *testing.T) {
	p := &ProductPage{Page: NewPage(0, 20), TotalElements: 41}
	assert.Equal(t, int64(3), p.TotalPages())

	p.TotalElements = 0
	assert.Equal(t, int64(0), p.TotalPages())
}
