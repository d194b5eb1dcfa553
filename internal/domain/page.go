package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber держит смещение Number*Size далеко от переполнения int64.
	MaxPageNumber = math.MaxInt32
)

// Page — параметры постраничной выборки. Number считается с нуля.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 0 {
		number = 0
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Page{Number: number, Size: size}
}

func (p Page) Offset() int64 {
	return int64(p.Number) * int64(p.Size)
}

// ProductPage — страница товаров и общее количество подходящих записей.
type ProductPage struct {
	Products      []Product
	Page          Page
	TotalElements int64
}

func (p *ProductPage) TotalPages() int64 {
	if p.Page.Size <= 0 {
		return 0
	}
	size := int64(p.Page.Size)
	return (p.TotalElements + size - 1) / size
}
