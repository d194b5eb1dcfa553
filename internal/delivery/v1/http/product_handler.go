package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
	maxImageSize   int64
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger, maxImageSize int64) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger, maxImageSize: maxImageSize}
}

// listProducts
//
//	@Summary	Список товаров
//	@Tags		products
//	@Produce	json
//	@Param		page	query		int	false	"Номер страницы, с нуля"
//	@Param		size	query		int	false	"Размер страницы (по умолчанию 20, максимум 100)"
//	@Success	200		{object}	ProductPageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	res, err := p.productUsecase.ListProducts(r.Context(), page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductPageResponse(res))
}

// createProduct
//
//	@Summary	Создание товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		product	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure	404		{object}	ErrorResponse	"Категория не найдена"
//	@Router		/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), req.toCreateReq())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// updateProduct
//
//	@Summary	Полное обновление товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"ID товара"
//	@Param		product	body		ProductRequest	true	"Товар"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), req.toUpdateReq(id))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Param		id	path	int	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadImage
//
//	@Summary		Загрузка изображения товара
//	@Description	Сохраняет изображение в MinIO и записывает его URL в imageUrl
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		int		true	"ID товара"
//	@Param			image	formData	file	true	"Изображение (jpeg, png, webp, gif)"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Router			/products/{id}/image [put]
func (p *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	const (
		formOverhead = 1 << 20
		maxMemory    = 32 << 20
	)

	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, p.maxImageSize+formOverhead)
	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.fail(w, r, err)
		return
	}

	data, mimeType, name, err := readImage(r, "image", p.maxImageSize)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.UploadProductImage(r.Context(), usecase.NewUploadImageReq(id, data, mimeType, name))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// findByCategoryID
//
//	@Summary	Товары категории
//	@Tags		products
//	@Produce	json
//	@Param		id		query		int	true	"ID категории"
//	@Param		page	query		int	false	"Номер страницы, с нуля"
//	@Param		size	query		int	false	"Размер страницы"
//	@Success	200		{object}	ProductPageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/products/search/findByCategoryId [get]
func (p *ProductHandler) findByCategoryID(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	res, err := p.productUsecase.ListProductsByCategory(r.Context(), categoryID, page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductPageResponse(res))
}

// findByNameContaining
//
//	@Summary	Поиск товаров по части имени
//	@Tags		products
//	@Produce	json
//	@Param		name	query		string	true	"Фрагмент имени, без учёта регистра"
//	@Param		page	query		int		false	"Номер страницы, с нуля"
//	@Param		size	query		int		false	"Размер страницы"
//	@Success	200		{object}	ProductPageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/products/search/findByNameContaining [get]
func (p *ProductHandler) findByNameContaining(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	page, err := parsePage(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	res, err := p.productUsecase.SearchProducts(r.Context(), name, page)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductPageResponse(res))
}

func (p *ProductHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logError(p.logger, r, err)
	WriteError(w, err)
}

// logError пишет 5xx как ошибки, остальное как предупреждения.
func logError(log logger.Logger, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%s %s: %d", r.Method, r.URL.Path, code)
		return
	}
	log.Warnf("%s %s: %d %v", r.Method, r.URL.Path, code, err)
}
