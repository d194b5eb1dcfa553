package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/cfg"
	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-service/pkg/clients"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProduct() *domain.Product {
	created := time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)
	return &domain.Product{
		ID:           42,
		CategoryID:   1,
		SKU:          "BOOK-TECH-1000",
		Name:         "Crash Course in Python",
		UnitPrice:    decimal.RequireFromString("14.99"),
		Active:       true,
		UnitsInStock: 100,
		DateCreated:  created,
		LastUpdated:  created.Add(time.Second),
	}
}

func TestProductKeys(t *testing.T) {
	assert.Equal(t, "product:42", productKey(42))
	assert.Equal(t, []string{"product:1", "product:2"}, buildProductCacheKeys([]int64{1, 2}))
}

func TestMarshalProductForCache(t *testing.T) {
	conv := converter.NewProductConverter()
	product := sampleProduct()

	data, err := marshalProductForCache(conv.ToRedisModel(product))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unit_price":"14.99"`)

	model, err := unmarshalProductFromCache(data)
	require.NoError(t, err)

	back := conv.ToEntity(model)
	assert.True(t, product.UnitPrice.Equal(back.UnitPrice))
	assert.True(t, product.DateCreated.Equal(back.DateCreated))
	assert.True(t, product.LastUpdated.Equal(back.LastUpdated))
	assert.Equal(t, product.Name, back.Name)
	assert.Equal(t, product.UnitsInStock, back.UnitsInStock)

	_, err = unmarshalProductFromCache([]byte("{broken"))
	assert.Error(t, err)
}

func TestCacheRepo_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	redisCfg := &cfg.RedisCfg{Addr: addr, DialTimeout: time.Second, Timeout: time.Second, ProductTTL: time.Minute}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("redis is not reachable: %v", err)
	}

	repo := NewCacheRepo(client, converter.NewProductConverter(), redisCfg, logger.NewNopLogger())
	product := sampleProduct()

	require.NoError(t, repo.DeleteProducts(ctx, []int64{product.ID}))

	got, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	added, err := repo.AddProduct(ctx, product)
	require.NoError(t, err)
	assert.True(t, added)
	got, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "14.99", got.UnitPrice.StringFixed(2))

	// Существующее значение не перезаписывается.
	stale := *product
	stale.Name = "stale"
	added, err = repo.AddProduct(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, added)
	got, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, product.Name, got.Name)

	require.NoError(t, client.Client.Set(ctx, productKey(7), `{"id":8}`, time.Minute).Err())
	got, err = repo.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.DeleteProducts(ctx, []int64{product.ID}))
	got, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
