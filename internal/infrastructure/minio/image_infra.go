package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/cfg"
	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/internal/infrastructure"
	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/jitter"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/google/uuid"
)

const cleanupTimeout = 30 * time.Second

var cleanupPolicy = jitter.Policy{
	Attempts: 3,
	Base:     time.Second,
	Max:      4 * time.Second,
	Factor:   jitter.DefaultJitter,
}

// ImageInfrastructure управляет загрузкой и очисткой изображений товаров в MinIO.
type ImageInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	policy      jitter.Policy
	wg          sync.WaitGroup
}

func NewImageInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *ImageInfrastructure {
	return &ImageInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		policy:      cleanupPolicy,
	}
}

// UploadImage загружает изображение товара под ключом products/{id}/{uuid}.{ext}
// и возвращает ключ вместе с публичным URL.
func (m *ImageInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "ImageInfrastructure.UploadImage"

	if m.cfg.MaxImageSize > 0 && int64(len(req.Data)) > m.cfg.MaxImageSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	ext, err := infrastructure.GetExtensionFromMIME(req.MimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("invalid mime type %s for %s: %w", req.MimeType, req.Name, err))
	}

	objKey := ObjectKey(req.ProductID, uuid.NewString(), ext)
	key, err := m.minioRepo.Upload(ctx, domain.NewImage(objKey, req.Data, req.MimeType))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", req.Name, err))
	}

	return usecase.NewUploadImageRes(key, m.PublicURL(key)), nil
}

// PublicURL собирает адрес объекта, который сохраняется в image_url.
func (m *ImageInfrastructure) PublicURL(key string) string {
	return m.cfg.PublicBaseURL + "/" + key
}

func ObjectKey(productID int64, id, ext string) string {
	return fmt.Sprintf("products/%d/%s.%s", productID, id, ext)
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *ImageInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter.
func (m *ImageInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "ImageInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		err := jitter.Retry(ctx, m.policy, func(ctx context.Context) error {
			return m.minioRepo.Delete(ctx, key)
		})
		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
			return
		}
		m.logger.Errorf(err, "%s: failed to delete key=%v", op, key)
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *ImageInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
