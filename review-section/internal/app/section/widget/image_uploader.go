package widget

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"reviewsection/pkg/logger"
	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/infrastructure"
)

const (
	IconImage   = "doctype:image"
	IconUnknown = "doctype:unknown"
)

var imageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// IconFor подбирает иконку по расширению файла
func IconFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := imageExtensions[ext]; ok {
		return IconImage
	}
	return IconUnknown
}

// ImageUploader загружает файлы и публикует событие imagesuploaded
type ImageUploader struct {
	store     infrastructure.ImageStore
	files     []entity.UploadedFile
	listeners []func(ids []string)
}

func NewImageUploader(store infrastructure.ImageStore) *ImageUploader {
	return &ImageUploader{store: store}
}

func (u *ImageUploader) OnImagesUploaded(fn func(ids []string)) {
	u.listeners = append(u.listeners, fn)
}

// Upload загружает пачку файлов; подписчики получают идентификаторы только этой пачки
func (u *ImageUploader) Upload(ctx context.Context, files []entity.UploadFile) ([]entity.UploadedFile, error) {
	if len(files) == 0 {
		return []entity.UploadedFile{}, nil
	}

	batchID := uuid.NewString()
	uploaded, err := u.store.UploadImages(ctx, files)
	if err != nil {
		logger.Error().Err(err).Str("batch_id", batchID).Int("files", len(files)).Msg("Failed to upload images")
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}

	ids := make([]string, 0, len(uploaded))
	for i := range uploaded {
		uploaded[i].Icon = IconFor(uploaded[i].Name)
		ids = append(ids, uploaded[i].ID)
	}
	u.files = append(u.files, uploaded...)

	logger.Debug().Str("batch_id", batchID).Strs("ids", ids).Msg("Images uploaded")

	for _, fn := range u.listeners {
		fn(append([]string{}, ids...))
	}
	return uploaded, nil
}

// Files - все файлы, загруженные за время жизни секции
func (u *ImageUploader) Files() []entity.UploadedFile {
	out := make([]entity.UploadedFile, len(u.files))
	copy(out, u.files)
	return out
}
