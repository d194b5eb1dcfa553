package infrastructure

import (
	"mime"

	"github.com/DRSN-tech/catalog-service/pkg/e"
)

// imageExtensions — форматы изображений товаров, которые принимает каталог.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Параметры типа (после ';') и регистр не учитываются. Для остальных типов
// возвращает "bin" и e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "bin", e.Wrap(mimeType, e.ErrUnsupportedMediaType)
	}

	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "bin", e.Wrap(mediaType, e.ErrUnsupportedMediaType)
	}

	return ext, nil
}

// IsSupportedImage сообщает, можно ли сохранить файл с таким MIME-типом как изображение товара.
func IsSupportedImage(mimeType string) bool {
	_, err := GetExtensionFromMIME(mimeType)
	return err == nil
}
