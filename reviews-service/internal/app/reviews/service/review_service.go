package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/metrics"
	"reviewsection/pkg/rating"
	"reviewsection/reviews-service/internal/app/reviews/entity"
	"reviewsection/reviews-service/internal/app/reviews/infrastructure"
	"reviewsection/reviews-service/internal/app/reviews/repository"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound     = errors.New("review not found")
	ErrEmptyComment       = errors.New("comment must not be blank")
	ErrActingUserMismatch = errors.New("acting user does not match authenticated user")
)

const invalidateAttempts = 3

// Пауза между попытками инвалидации, растет линейно
var invalidateBackoff = 50 * time.Millisecond

// ReviewService обрабатывает бизнес-логику отзывов
// Координирует работу репозитория, Redis кеша и Kafka
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	cache         infrastructure.ReviewCache
	kafkaProducer infrastructure.MessagePublisher
	imageBaseURL  string
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
// imageBaseURL - публичный адрес сервиса, от него строятся ссылки /images/:id
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	cache infrastructure.ReviewCache,
	kafkaProducer infrastructure.MessagePublisher,
	imageBaseURL string,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
		imageBaseURL:  strings.TrimRight(imageBaseURL, "/"),
	}
}

// CreateReview создает новый отзыв
// 1. Сохраняет отзыв в MongoDB
// 2. Инвалидирует кеш списка отзывов товара
// 3. Отправляет событие REVIEW_CREATED в Kafka
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if req.ActingUser != "" && req.ActingUser != userID {
		return nil, ErrActingUserMismatch
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, ErrEmptyComment
	}

	imageIDs := make([]string, len(req.ImageIDs))
	copy(imageIDs, req.ImageIDs)

	review := &entity.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ImageIDs:  imageIDs,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.RecordReviewCreated(review.Rating)

	// Следующее чтение должно видеть новый отзыв
	s.invalidateProduct(ctx, review.ProductID)

	event := entity.ReviewEvent{
		EventType:  entity.EventReviewCreated,
		ReviewID:   review.ID.Hex(),
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		ImageCount: len(review.ImageIDs),
		Timestamp:  time.Now().UTC(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже создан, проблемы с Kafka не критичны
		logger.Error().Err(err).Str("review_id", event.ReviewID).Msg("Failed to publish review created event")
	}

	return review, nil
}

// GetReviewsByProduct получает отзывы товара, сначала из кеша
func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	cached, found, err := s.cache.GetProductReviews(ctx, productID)
	if err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to read reviews cache")
	}
	if found {
		return cached, nil
	}

	// Версию читаем до запроса в БД: если между чтением и записью
	// прошла инвалидация, устаревший список в кеш не попадет
	version, versionErr := s.cache.ProductVersion(ctx, productID)
	if versionErr != nil {
		logger.Warn().Err(versionErr).Str("product_id", productID).Msg("Failed to read reviews cache version")
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	if versionErr != nil {
		return reviews, nil
	}

	if err := s.cache.SetProductReviews(ctx, productID, reviews, version); err != nil {
		if errors.Is(err, infrastructure.ErrCacheVersionChanged) {
			logger.Debug().Str("product_id", productID).Msg("Reviews cache invalidated during load, skipping store")
		} else {
			logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to cache reviews")
		}
	}

	return reviews, nil
}

// invalidateProduct повторяет инвалидацию несколько раз.
// Отзыв уже сохранен, поэтому ошибка только логируется; устаревший список живет не дольше TTL.
func (s *ReviewService) invalidateProduct(ctx context.Context, productID string) {
	var err error
	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		if err = s.cache.InvalidateProduct(ctx, productID); err == nil {
			return
		}
		if attempt == invalidateAttempts {
			break
		}

		select {
		case <-ctx.Done():
			logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to invalidate reviews cache")
			return
		case <-time.After(time.Duration(attempt) * invalidateBackoff):
		}
	}

	logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to invalidate reviews cache")
}

// GetDistribution считает распределение оценок по списку отзывов товара
func (s *ReviewService) GetDistribution(ctx context.Context, productID string) (*entity.DistributionResponse, error) {
	reviews, err := s.GetReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	entries := rating.Distribution(reviews, func(r entity.Review) int { return r.Rating })
	if entries == nil {
		entries = []rating.Entry{}
	}

	return &entity.DistributionResponse{
		ProductID: productID,
		Total:     len(reviews),
		Entries:   entries,
	}, nil
}

// GetReviewImages возвращает ссылки на изображения отзыва в порядке загрузки
func (s *ReviewService) GetReviewImages(ctx context.Context, reviewID string) ([]string, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	urls := make([]string, 0, len(review.ImageIDs))
	for _, id := range review.ImageIDs {
		urls = append(urls, s.imageBaseURL+"/images/"+id)
	}

	return urls, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Ключ = ProductID, чтобы события одного товара шли по порядку
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
