package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const priceScale = 2

// maxUnitPrice соответствует NUMERIC(13,2): не больше 11 знаков до запятой.
var maxUnitPrice = decimal.New(1, 11)

// Validator проверяет входные запросы. Сама сущность Product не валидируется.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateProduct нормализует строки запроса и проверяет ограничения товара.
func (v *Validator) ValidateProduct(req *CreateProductReq) error {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	req.ImageURL = strings.TrimSpace(req.ImageURL)

	if err := v.v.Struct(req); err != nil {
		return translate(err)
	}

	return validatePrice(req.UnitPrice)
}

func (v *Validator) ValidateProductUpdate(req *UpdateProductReq) error {
	if req.ID <= 0 {
		return e.ErrInvalidID
	}

	return v.ValidateProduct(&req.CreateProductReq)
}

func (v *Validator) ValidateCategory(req *CreateCategoryReq) error {
	req.Name = strings.TrimSpace(req.Name)

	if err := v.v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && fieldErrs[0].Tag() == "required" {
			return e.ErrCategoryNameRequired
		}
		return translate(err)
	}

	return nil
}

// validatePrice: цена неотрицательна, не больше двух знаков после запятой и помещается в NUMERIC(13,2).
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return e.ErrInvalidPrice
	}

	if !price.Equal(price.Truncate(priceScale)) {
		return e.ErrPricePrecision
	}

	if price.GreaterThanOrEqual(maxUnitPrice) {
		return e.ErrInvalidPrice
	}

	return nil
}

// translate сводит ошибки validator к доменным sentinel-ошибкам.
func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return e.Wrap("validator", err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return e.ErrProductNameRequired
		}
	case "UnitsInStock":
		return e.ErrNegativeStock
	case "CategoryID":
		return e.Wrap("category_id must be positive", e.ErrValidation)
	}

	return e.Wrap(fmt.Sprintf("field %s failed on %q", fe.Field(), fe.Tag()), e.ErrValidation)
}
