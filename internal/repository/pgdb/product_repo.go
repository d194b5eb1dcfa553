package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, category_id, sku, name, description, unit_price, image_url,
	active, units_in_stock, date_created, last_updated`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Работает в транзакции из контекста, если она есть, иначе напрямую через пул.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
	ts   *Timestamper
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter, ts *Timestamper) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
		ts:   ts,
	}
}

// Create вставляет новый товар. Идентификатор выдаёт БД, метки времени проставляет Timestamper.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	const op = "ProductRepo.Create"

	model := p.conv.ToModel(product)
	p.ts.OnCreate(model)

	query := `
		INSERT INTO product (
			category_id, sku, name, description, unit_price, image_url,
			active, units_in_stock, date_created, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;
	`

	q := tr.QuerierFromCtx(ctx, p.pool)
	if err := q.QueryRow(ctx, query,
		model.CategoryID,
		model.SKU,
		model.Name,
		model.Description,
		model.UnitPrice,
		model.ImageURL,
		model.Active,
		model.UnitsInStock,
		model.DateCreated,
		model.LastUpdated,
	).Scan(&model.ID); err != nil {
		return nil, e.Wrap(op, mapError(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(model), nil
}

// Update перезаписывает изменяемые поля товара. date_created не меняется,
// last_updated строго возрастает даже при конкурентных записях.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	const op = "ProductRepo.Update"

	q := tr.QuerierFromCtx(ctx, p.pool)

	prev, err := scanProduct(q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM product WHERE id = $1 FOR UPDATE`, product.ID))
	if err != nil {
		return nil, e.Wrap(op, mapError(err, e.ErrProductNotFound))
	}

	model := p.conv.ToModel(product)
	p.ts.OnUpdate(model, prev)

	query := `
		UPDATE product SET
			category_id = $2,
			sku = $3,
			name = $4,
			description = $5,
			unit_price = $6,
			image_url = $7,
			active = $8,
			units_in_stock = $9,
			last_updated = GREATEST($10, last_updated + interval '1 microsecond')
		WHERE id = $1
		RETURNING date_created, last_updated;
	`

	if err := q.QueryRow(ctx, query,
		model.ID,
		model.CategoryID,
		model.SKU,
		model.Name,
		model.Description,
		model.UnitPrice,
		model.ImageURL,
		model.Active,
		model.UnitsInStock,
		model.LastUpdated,
	).Scan(&model.DateCreated, &model.LastUpdated); err != nil {
		return nil, e.Wrap(op, mapError(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductRepo.GetByID"

	q := tr.QuerierFromCtx(ctx, p.pool)
	model, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM product WHERE id = $1`, id))
	if err != nil {
		return nil, e.Wrap(op, mapError(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(model), nil
}

// GetByIDs возвращает найденные товары одним запросом, упорядоченные по id.
// Отсутствующие id просто не попадают в результат.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const op = "ProductRepo.GetByIDs"

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	q := tr.QuerierFromCtx(ctx, p.pool)
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM product WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer rows.Close()

	models := make([]*converter.ProductModel, 0, len(ids))
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return p.conv.ToArrEntity(models), nil
}

func (p *ProductRepo) List(ctx context.Context, page domain.Page) (*domain.ProductPage, error) {
	return p.page(ctx, "ProductRepo.List", "", page)
}

func (p *ProductRepo) ListByCategory(ctx context.Context, categoryID int64, page domain.Page) (*domain.ProductPage, error) {
	return p.page(ctx, "ProductRepo.ListByCategory", "WHERE category_id = $1", page, categoryID)
}

// SearchByName ищет товары, имя которых содержит fragment без учёта регистра.
func (p *ProductRepo) SearchByName(ctx context.Context, fragment string, page domain.Page) (*domain.ProductPage, error) {
	return p.page(ctx, "ProductRepo.SearchByName", "WHERE name ILIKE $1", page, containsPattern(fragment))
}

// Delete удаляет товар и возвращает удалённую запись.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductRepo.Delete"

	q := tr.QuerierFromCtx(ctx, p.pool)
	model, err := scanProduct(q.QueryRow(ctx, `DELETE FROM product WHERE id = $1 RETURNING `+productColumns, id))
	if err != nil {
		return nil, e.Wrap(op, mapError(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(model), nil
}

// page выполняет постраничную выборку с фильтром where. Аргументы фильтра идут первыми,
// LIMIT и OFFSET добавляются после них.
func (p *ProductRepo) page(ctx context.Context, op, where string, page domain.Page, args ...any) (*domain.ProductPage, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM product `+where, args...).Scan(&total); err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &domain.ProductPage{Products: []domain.Product{}, Page: page, TotalElements: total}
	if total == 0 || page.Offset() >= total {
		return res, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM product %s ORDER BY id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)

	rows, err := q.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer rows.Close()

	models := make([]*converter.ProductModel, 0, page.Size)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(op, err)
	}

	res.Products = p.conv.ToArrEntity(models)
	return res, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	if err := row.Scan(
		&model.ID,
		&model.CategoryID,
		&model.SKU,
		&model.Name,
		&model.Description,
		&model.UnitPrice,
		&model.ImageURL,
		&model.Active,
		&model.UnitsInStock,
		&model.DateCreated,
		&model.LastUpdated,
	); err != nil {
		return nil, err
	}

	return &model, nil
}
