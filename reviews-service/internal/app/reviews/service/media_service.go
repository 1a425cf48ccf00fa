package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"reviewsection/pkg/metrics"
	"reviewsection/reviews-service/internal/app/reviews/entity"
	"reviewsection/reviews-service/internal/app/reviews/repository"
)

var ErrImageNotFound = errors.New("image not found")

// MediaService сохраняет и отдает изображения отзывов
type MediaService struct {
	imageRepo repository.ImageRepository
}

func NewMediaService(imageRepo repository.ImageRepository) *MediaService {
	return &MediaService{imageRepo: imageRepo}
}

// UploadImages сохраняет файлы по порядку; при ошибке возвращает уже сохраненные вместе с ошибкой
func (s *MediaService) UploadImages(ctx context.Context, uploads []entity.ImageUpload) ([]entity.StoredImage, error) {
	stored := make([]entity.StoredImage, 0, len(uploads))

	for _, upload := range uploads {
		image, err := s.imageRepo.Save(ctx, upload)
		if err != nil {
			return stored, fmt.Errorf("failed to store %s: %w", upload.Name, err)
		}
		metrics.ImagesStored.Inc()
		stored = append(stored, *image)
	}

	return stored, nil
}

func (s *MediaService) OpenImage(ctx context.Context, imageID string) (*entity.StoredImage, io.ReadCloser, error) {
	image, content, err := s.imageRepo.Open(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, nil, ErrImageNotFound
		}
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	return image, content, nil
}
