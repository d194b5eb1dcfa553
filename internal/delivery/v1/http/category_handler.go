package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
)

type CategoryHandler struct {
	categoryUsecase usecase.CategoryUC
	logger          logger.Logger
}

func NewCategoryHandler(categoryUsecase usecase.CategoryUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryUsecase: categoryUsecase, logger: logger}
}

// listCategories
//
//	@Summary	Список категорий
//	@Tags		categories
//	@Produce	json
//	@Success	200	{array}	CategoryResponse
//	@Router		/product-category [get]
func (c *CategoryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categoryUsecase.ListCategories(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	res := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, toCategoryResponse(&categories[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

// createCategory
//
//	@Summary		Создание категории
//	@Description	Идемпотентно: для существующего имени возвращает уже созданную категорию
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			category	body		CategoryRequest	true	"Категория"
//	@Success		201			{object}	CategoryResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/product-category [post]
func (c *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		c.fail(w, r, err)
		return
	}

	category, err := c.categoryUsecase.CreateCategory(r.Context(), &usecase.CreateCategoryReq{Name: req.CategoryName})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

// getCategory
//
//	@Summary	Категория по ID
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		int	true	"ID категории"
//	@Success	200	{object}	CategoryResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/product-category/{id} [get]
func (c *CategoryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	category, err := c.categoryUsecase.GetCategory(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

func (c *CategoryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logError(c.logger, r, err)
	WriteError(w, err)
}
