package converter

import "github.com/DRSN-tech/catalog-service/internal/domain"

type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
}

type productConverter struct{}

func NewProductConverter() ProductConverter {
	return productConverter{}
}

func (productConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	if entity == nil {
		return nil
	}

	return &ProductRedisModel{
		ID:           entity.ID,
		CategoryID:   entity.CategoryID,
		SKU:          entity.SKU,
		Name:         entity.Name,
		Description:  entity.Description,
		UnitPrice:    entity.UnitPrice,
		ImageURL:     entity.ImageURL,
		Active:       entity.Active,
		UnitsInStock: entity.UnitsInStock,
		DateCreated:  entity.DateCreated,
		LastUpdated:  entity.LastUpdated,
	}
}

func (productConverter) ToEntity(model *ProductRedisModel) *domain.Product {
	if model == nil {
		return nil
	}

	return &domain.Product{
		ID:           model.ID,
		CategoryID:   model.CategoryID,
		SKU:          model.SKU,
		Name:         model.Name,
		Description:  model.Description,
		UnitPrice:    model.UnitPrice,
		ImageURL:     model.ImageURL,
		Active:       model.Active,
		UnitsInStock: model.UnitsInStock,
		DateCreated:  model.DateCreated,
		LastUpdated:  model.LastUpdated,
	}
}
