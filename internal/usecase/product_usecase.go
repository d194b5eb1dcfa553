package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"golang.org/x/sync/singleflight"
)

const backgroundCacheTimeout = 500 * time.Millisecond

// ProductUseCase реализует бизнес-логику управления товарами каталога.
type ProductUseCase struct {
	txRunner
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	outboxRepo   OutboxRepository
	cacheRepo    CacheRepository
	imagesInfra  ImagesInfra
	validator    *Validator
	logger       logger.Logger
	now          func() time.Time
	bg           sync.WaitGroup
	loads        singleflight.Group
	mutations    mutationLog
}

func NewProductUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	validator *Validator,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner{dbPool: dbPool, logger: logger},
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		outboxRepo:   outboxRepo,
		cacheRepo:    cacheRepo,
		imagesInfra:  imagesInfra,
		validator:    validator,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateProduct сохраняет новый товар и событие product.created в одной транзакции.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validator.ValidateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Product
	err := p.withinTx(ctx, func(ctx context.Context) error {
		if err := p.ensureCategory(ctx, req.CategoryID); err != nil {
			return err
		}

		var err error
		created, err = p.productRepo.Create(ctx, req.ToProduct())
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct полностью заменяет изменяемые поля товара. date_created не меняется.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validator.ValidateProductUpdate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err := p.withinTx(ctx, func(ctx context.Context) error {
		if err := p.ensureCategory(ctx, req.CategoryID); err != nil {
			return err
		}

		var err error
		updated, err = p.productRepo.Update(ctx, req.ToProduct())
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductUpdated, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, updated.ID)
	return updated, nil
}

// DeleteProduct удаляет товар и пишет событие product.deleted.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	if id <= 0 {
		return e.Wrap(op, e.ErrInvalidID)
	}

	err := p.withinTx(ctx, func(ctx context.Context) error {
		deleted, err := p.productRepo.Delete(ctx, id)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductDeleted, deleted)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, id)
	return nil
}

// GetProduct возвращает товар через кэш (cache-aside). Ошибки кэша не фатальны.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	cached, err := p.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		p.logger.Warnf("product cache read failed, id=%d: %v", id, e.Wrap(op, err))
	} else if cached != nil {
		return cached, nil
	}

	// Одновременные промахи по одному id читают БД один раз.
	v, err, _ := p.loads.Do(loadKey(id), func() (any, error) {
		gen := p.mutations.current(id)

		product, err := p.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		// Фоновое добавление товара в кэш
		p.bg.Add(1)
		go func(product domain.Product) {
			defer p.bg.Done()
			p.fillCache(&product, gen)
		}(*product)

		return *product, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product := v.(domain.Product)
	return &product, nil
}

func (p *ProductUseCase) ListProducts(ctx context.Context, page domain.Page) (*domain.ProductPage, error) {
	const op = "ProductUseCase.ListProducts"

	res, err := p.productRepo.List(ctx, page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return res, nil
}

func (p *ProductUseCase) ListProductsByCategory(ctx context.Context, categoryID int64, page domain.Page) (*domain.ProductPage, error) {
	const op = "ProductUseCase.ListProductsByCategory"

	if categoryID <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	res, err := p.productRepo.ListByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return res, nil
}

// SearchProducts ищет товары, название которых содержит name (без учёта регистра).
func (p *ProductUseCase) SearchProducts(ctx context.Context, name string, page domain.Page) (*domain.ProductPage, error) {
	const op = "ProductUseCase.SearchProducts"

	res, err := p.productRepo.SearchByName(ctx, strings.TrimSpace(name), page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return res, nil
}

// UploadProductImage загружает изображение в MinIO и записывает его URL в товар.
// Если обновление в БД не удалось, загруженный объект удаляется в фоне.
func (p *ProductUseCase) UploadProductImage(ctx context.Context, req *UploadImageReq) (*domain.Product, error) {
	const op = "ProductUseCase.UploadProductImage"

	if req.ProductID <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}
	if len(req.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	// Не загружаем изображение для несуществующего товара
	if _, err := p.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, e.Wrap(op, err)
	}

	imageRes, err := p.imagesInfra.UploadImage(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err = p.withinTx(ctx, func(ctx context.Context) error {
		current, err := p.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		current.ImageURL = imageRes.URL
		updated, err = p.productRepo.Update(ctx, current)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductUpdated, updated)
	})
	if err != nil {
		p.logger.Warnf(
			"Cleaning up orphaned image after transaction failure. product_id: %d, key: %s, error: %v",
			req.ProductID, imageRes.ObjectKey, e.Wrap(op, err),
		)
		p.imagesInfra.CleanupImages([]string{imageRes.ObjectKey})
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, updated.ID)
	return updated, nil
}

// GetProductsInfo читает товары по списку id одним запросом к БД.
// Повторяющиеся id учитываются один раз.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, ids []int64) (*ProductsInfo, error) {
	const op = "ProductUseCase.GetProductsInfo"

	if len(ids) > MaxProductsInfoIDs {
		return nil, e.Wrap(op, e.ErrTooManyIDs)
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, e.Wrap(op, e.ErrInvalidID)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := p.productRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	byID := make(map[int64]domain.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}

	res := &ProductsInfo{Products: make([]domain.Product, 0, len(found)), NotFound: []int64{}}
	for _, id := range unique {
		if product, ok := byID[id]; ok {
			res.Products = append(res.Products, product)
			continue
		}
		res.NotFound = append(res.NotFound, id)
	}

	return res, nil
}

// WaitBackground ждёт фоновые записи в кэш (используется при остановке приложения).
func (p *ProductUseCase) WaitBackground(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.bg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ProductUseCase) ensureCategory(ctx context.Context, categoryID int64) error {
	_, err := p.categoryRepo.GetByID(ctx, categoryID)
	return err
}

func (p *ProductUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, product *domain.Product) error {
	event, err := NewProductEvent(eventType, product, p.now())
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

// fillCache кладёт прочитанную из БД строку в кэш (SET NX). Если товар менялся
// после чтения (gen устарел), добавленное значение сразу удаляется.
func (p *ProductUseCase) fillCache(product *domain.Product, gen uint64) {
	const op = "ProductUseCase.fillCache"

	if p.mutations.current(product.ID) != gen {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
	defer cancel()

	added, err := p.cacheRepo.AddProduct(ctx, product)
	if err != nil {
		p.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		return
	}

	if added && p.mutations.current(product.ID) != gen {
		if err := p.cacheRepo.DeleteProducts(ctx, []int64{product.ID}); err != nil {
			p.logger.Warnf("Failed to drop stale product %d from cache: %v", product.ID, err)
		}
	}
}

// invalidate удаляет товар из кэша; ошибка только логируется.
// Вызывается после commit: отметка об изменении ставится до удаления ключа.
func (p *ProductUseCase) invalidate(ctx context.Context, id int64) {
	p.mutations.bump(id)
	p.loads.Forget(loadKey(id))

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to delete product %d from cache: %v", id, err)
	}
}

func loadKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

const mutationStripes = 64

// mutationLog — счётчики изменений товаров, разбитые на полосы по id.
// Совпадение полосы у разных id лишь пропускает заполнение кэша.
type mutationLog struct {
	stripes [mutationStripes]atomic.Uint64
}

func (m *mutationLog) stripe(id int64) *atomic.Uint64 {
	return &m.stripes[uint64(id)%mutationStripes]
}

func (m *mutationLog) current(id int64) uint64 {
	return m.stripe(id).Load()
}

func (m *mutationLog) bump(id int64) {
	m.stripe(id).Add(1)
}
