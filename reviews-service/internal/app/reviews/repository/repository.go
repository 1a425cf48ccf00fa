package repository

import (
	"context"
	"io"

	"reviewsection/reviews-service/internal/app/reviews/entity"
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB
// Отзывы только создаются и читаются
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	GetByID(ctx context.Context, id string) (*entity.Review, error)
}

// ImageRepository хранит изображения отзывов в GridFS
type ImageRepository interface {
	Save(ctx context.Context, upload entity.ImageUpload) (*entity.StoredImage, error)
	Open(ctx context.Context, id string) (*entity.StoredImage, io.ReadCloser, error)
}

// UserRepository читает справочник пользователей Auth Service
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
