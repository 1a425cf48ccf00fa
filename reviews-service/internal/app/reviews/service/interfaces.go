package service

import (
	"context"
	"io"

	"reviewsection/reviews-service/internal/app/reviews/entity"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	GetDistribution(ctx context.Context, productID string) (*entity.DistributionResponse, error)
	GetReviewImages(ctx context.Context, reviewID string) ([]string, error)
}

type MediaServiceInterface interface {
	UploadImages(ctx context.Context, uploads []entity.ImageUpload) ([]entity.StoredImage, error)
	OpenImage(ctx context.Context, imageID string) (*entity.StoredImage, io.ReadCloser, error)
}

type UserServiceInterface interface {
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}
