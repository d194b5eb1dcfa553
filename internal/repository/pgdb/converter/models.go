package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductModel представляет запись таблицы product в PostgreSQL.
// Все колонки, кроме id и category_id, допускают NULL.
type ProductModel struct {
	ID           int64          `db:"id"`
	CategoryID   int64          `db:"category_id"`
	SKU          *string        `db:"sku"`
	Name         *string        `db:"name"`
	Description  *string        `db:"description"`
	UnitPrice    pgtype.Numeric `db:"unit_price"`
	ImageURL     *string        `db:"image_url"`
	Active       *bool          `db:"active"`
	UnitsInStock *int32         `db:"units_in_stock"`
	DateCreated  *time.Time     `db:"date_created"`
	LastUpdated  *time.Time     `db:"last_updated"`
}

// CategoryModel представляет запись таблицы product_category в PostgreSQL.
type CategoryModel struct {
	ID   int64  `db:"id"`
	Name string `db:"category_name"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
