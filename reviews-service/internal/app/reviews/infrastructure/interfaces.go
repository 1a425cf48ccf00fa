package infrastructure

import (
	"context"
	"errors"

	"reviewsection/reviews-service/internal/app/reviews/entity"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ErrCacheVersionChanged - список устарел: пока его читали из БД, кеш товара был инвалидирован
var ErrCacheVersionChanged = errors.New("cache version changed")

// ReviewCache кеш списков отзывов по товару (Redis)
// found=false означает промах кеша, а не пустой список.
// Версию нужно прочитать до запроса в БД и передать в SetProductReviews.
type ReviewCache interface {
	GetProductReviews(ctx context.Context, productID string) (reviews []entity.Review, found bool, err error)
	ProductVersion(ctx context.Context, productID string) (int64, error)
	SetProductReviews(ctx context.Context, productID string, reviews []entity.Review, version int64) error
	InvalidateProduct(ctx context.Context, productID string) error
	Close() error
}
