package infrastructure

import (
	"context"

	"reviewsection/review-section/internal/app/section/entity"
)

// ReviewStore - чтение и создание отзывов товара
type ReviewStore interface {
	GetReviews(ctx context.Context, productID string) ([]entity.Review, error)
	AddReview(ctx context.Context, review entity.NewReview) (*entity.Review, error)
}

// ImageStore - загрузка изображений и ссылки на изображения отзыва
type ImageStore interface {
	UploadImages(ctx context.Context, files []entity.UploadFile) ([]entity.UploadedFile, error)
	GetReviewImages(ctx context.Context, reviewID string) ([]string, error)
}

// UserDirectory - отображаемые имена пользователей
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}

// ToastSink принимает уведомления для пользователя
type ToastSink interface {
	Show(toast entity.Toast)
}
