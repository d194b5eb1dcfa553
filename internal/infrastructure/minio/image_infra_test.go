package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/cfg"
	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/jitter"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageRepo struct {
	mu        sync.Mutex
	uploaded  []*domain.Image
	deleted   []string
	failsLeft int
	uploadErr error
}

func (f *fakeImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, image)
	return image.ObjectKey, nil
}

func (f *fakeImageRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failsLeft > 0 {
		f.failsLeft--
		return errors.New("connection refused")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newInfra(repo *fakeImageRepo) *ImageInfrastructure {
	infra := NewImageInfrastructure(repo, &cfg.MinIOCfg{
		BucketName:    "product-images",
		PublicBaseURL: "http://minio:9000/product-images",
		MaxImageSize:  1 << 10,
	}, logger.NewNopLogger(), context.Background())
	infra.policy = jitter.Policy{Attempts: 3, Base: time.Millisecond, Max: 2 * time.Millisecond}
	return infra
}

func TestImageInfrastructure_UploadImage(t *testing.T) {
	repo := &fakeImageRepo{}
	infra := newInfra(repo)

	res, err := infra.UploadImage(context.Background(),
		usecase.NewUploadImageReq(42, []byte("png-bytes"), "image/png", "mug.png"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.ObjectKey, "products/42/"))
	assert.True(t, strings.HasSuffix(res.ObjectKey, ".png"))
	assert.Equal(t, "http://minio:9000/product-images/"+res.ObjectKey, res.URL)

	require.Len(t, repo.uploaded, 1)
	assert.Equal(t, "image/png", repo.uploaded[0].ContentType)
	assert.Equal(t, int64(9), repo.uploaded[0].Size)
}

func TestImageInfrastructure_UploadImageRejects(t *testing.T) {
	repo := &fakeImageRepo{}
	infra := newInfra(repo)
	ctx := context.Background()

	_, err := infra.UploadImage(ctx, usecase.NewUploadImageReq(1, []byte("%PDF"), "application/pdf", "doc.pdf"))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	_, err = infra.UploadImage(ctx, usecase.NewUploadImageReq(1, make([]byte, 2<<10), "image/png", "big.png"))
	assert.ErrorIs(t, err, e.ErrFileTooLarge)

	repo.uploadErr = errors.New("minio down")
	_, err = infra.UploadImage(ctx, usecase.NewUploadImageReq(1, []byte("x"), "image/png", "a.png"))
	assert.Error(t, err)
	assert.Empty(t, repo.uploaded)
}

func TestImageInfrastructure_CleanupRetries(t *testing.T) {
	repo := &fakeImageRepo{failsLeft: 2}
	infra := newInfra(repo)

	infra.CleanupImages([]string{"products/1/a.png", "products/1/b.png"})
	infra.CleanupImages(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))

	assert.ElementsMatch(t, []string{"products/1/a.png", "products/1/b.png"}, repo.deleted)
}

func TestImageInfrastructure_WaitForCleanupTimeout(t *testing.T) {
	infra := newInfra(&fakeImageRepo{})
	infra.wg.Add(1)
	defer infra.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, infra.WaitForCleanup(ctx), context.Canceled)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "products/7/abc.webp", ObjectKey(7, "abc", "webp"))
}
