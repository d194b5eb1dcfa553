package usecase

import (
	"time"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewProductEvent собирает outbox-событие с protobuf-сериализованным снимком товара.
// Цена передаётся строкой, чтобы не терять точность.
func NewProductEvent(eventType OutboxEventType, product *domain.Product, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.New()

	payload, err := structpb.NewStruct(map[string]any{
		"event_id":        eventID.String(),
		"event_type":      string(eventType),
		"event_timestamp": now.UTC().Format(time.RFC3339Nano),
		"product":         ProductSnapshot(product),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: product.ID,
		Payload:   data,
		Status:    Pending,
		CreatedAt: now.UTC(),
	}, nil
}

// DecodeProductEvent разбирает payload события обратно в map.
func DecodeProductEvent(data []byte) (map[string]any, error) {
	var payload structpb.Struct
	if err := proto.Unmarshal(data, &payload); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return payload.AsMap(), nil
}

// ProductSnapshot — плоское представление товара для событий и gRPC-ответов.
func ProductSnapshot(p *domain.Product) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"category_id":    p.CategoryID,
		"sku":            p.SKU,
		"name":           p.Name,
		"description":    p.Description,
		"unit_price":     p.UnitPrice.StringFixed(priceScale),
		"image_url":      p.ImageURL,
		"active":         p.Active,
		"units_in_stock": p.UnitsInStock,
		"date_created":   formatTime(p.DateCreated),
		"last_updated":   formatTime(p.LastUpdated),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
