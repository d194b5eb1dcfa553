package pgdb

import (
	"time"

	"github.com/DRSN-tech/catalog-service/internal/repository/pgdb/converter"
)

// Точность TIMESTAMPTZ в PostgreSQL.
const timestampPrecision = time.Microsecond

// Timestamper проставляет date_created и last_updated при сохранении товара.
type Timestamper struct {
	now func() time.Time
}

func NewTimestamper(now func() time.Time) *Timestamper {
	if now == nil {
		now = time.Now
	}
	return &Timestamper{now: now}
}

// Now возвращает текущее время в UTC, усечённое до точности колонки.
func (t *Timestamper) Now() time.Time {
	return t.now().UTC().Truncate(timestampPrecision)
}

// OnCreate: обе метки получают одно и то же значение.
func (t *Timestamper) OnCreate(model *converter.ProductModel) {
	now := t.Now()
	created, updated := now, now
	model.DateCreated = &created
	model.LastUpdated = &updated
}

// OnUpdate сохраняет date_created из прежней записи, last_updated строго растёт.
func (t *Timestamper) OnUpdate(model, prev *converter.ProductModel) {
	now := t.Now()
	if prev.LastUpdated != nil && !now.After(*prev.LastUpdated) {
		now = prev.LastUpdated.Add(timestampPrecision)
	}
	updated := now
	model.LastUpdated = &updated

	if prev.DateCreated != nil {
		created := *prev.DateCreated
		model.DateCreated = &created
		return
	}

	created := now
	model.DateCreated = &created
}
