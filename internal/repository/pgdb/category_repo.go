package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// Create идемпотентно создаёт категорию по имени: при дубликате возвращает существующую.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		WITH ins AS (
			INSERT INTO product_category (category_name) VALUES ($1)
			ON CONFLICT (category_name) DO NOTHING
			RETURNING id, category_name
		)
		SELECT id, category_name FROM ins

		UNION ALL

		SELECT id, category_name
		FROM product_category
		WHERE category_name = $1
		  AND NOT EXISTS (SELECT 1 FROM ins);
	`

	model := c.conv.ToModel(category)
	q := tr.QuerierFromCtx(ctx, c.pool)
	if err := q.QueryRow(ctx, query, model.Name).Scan(&model.ID, &model.Name); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapError(err, e.ErrCategoryNotFound))
	}

	return c.conv.ToEntity(model), nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var model converter.CategoryModel

	q := tr.QuerierFromCtx(ctx, c.pool)
	if err := q.QueryRow(ctx, `SELECT id, category_name FROM product_category WHERE id = $1`, id).
		Scan(&model.ID, &model.Name); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapError(err, e.ErrCategoryNotFound))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)
	rows, err := q.Query(ctx, `SELECT id, category_name FROM product_category ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(&model.ID, &model.Name); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
