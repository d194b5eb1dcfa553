package minio

import (
	"bytes"
	"context"
	"net/http"

	"github.com/DRSN-tech/catalog-service/internal/cfg"
	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/minio/minio-go/v7"
)

// Ключ объекта содержит uuid, поэтому содержимое по нему никогда не меняется.
const imageCacheControl = "public, max-age=31536000, immutable"

// ImageRepo хранит изображения товаров в бакете MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload кладёт изображение под image.ObjectKey и возвращает ключ сохранённого объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	const op = "ImageRepo.Upload"

	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.ObjectKey, bytes.NewReader(image.Data), image.Size,
		minio.PutObjectOptions{
			ContentType:  image.ContentType,
			CacheControl: imageCacheControl,
		},
	)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return info.Key, nil
}

// Delete удаляет объект. Отсутствие объекта ошибкой не считается.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	const op = "ImageRepo.Delete"

	err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{})
	if err == nil || isNotFound(err) {
		return nil
	}

	return e.Wrap(op, err)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
