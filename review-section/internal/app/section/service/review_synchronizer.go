package service

import (
	"context"
	"errors"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/metrics"
	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/infrastructure"
)

var ErrNoSubscription = errors.New("no active subscription")

// ReviewDataSynchronizer - то, что нужно оркестратору от слоя данных
type ReviewDataSynchronizer interface {
	Mutate(ctx context.Context, review entity.NewReview) error
	Refresh(ctx context.Context) error
}

type subscription struct {
	productID string
	onData    func([]entity.Review)
	onError   func(error)
}

// ReviewSynchronizer кеширует списки отзывов по товару и перечитывает
// их по запросу. Вызывается только из цикла событий секции.
type ReviewSynchronizer struct {
	store infrastructure.ReviewStore
	cache map[string][]entity.Review
	sub   *subscription
}

func NewReviewSynchronizer(store infrastructure.ReviewStore) *ReviewSynchronizer {
	return &ReviewSynchronizer{
		store: store,
		cache: make(map[string][]entity.Review),
	}
}

// Subscribe делает productID текущим запросом и сразу доставляет результат
func (s *ReviewSynchronizer) Subscribe(ctx context.Context, productID string, onData func([]entity.Review), onError func(error)) {
	s.sub = &subscription{productID: productID, onData: onData, onError: onError}
	s.deliver(s.Query(ctx, productID))
}

// Query возвращает отзывы товара, из кеша если они уже были прочитаны
func (s *ReviewSynchronizer) Query(ctx context.Context, productID string) ([]entity.Review, error) {
	if reviews, ok := s.cache[productID]; ok {
		return reviews, nil
	}

	reviews, err := s.store.GetReviews(ctx, productID)
	if err != nil {
		return nil, &DataFetchError{ProductID: productID, Err: err}
	}

	s.cache[productID] = reviews
	return reviews, nil
}

// Refresh сбрасывает кеш последнего запроса и выполняет его заново
func (s *ReviewSynchronizer) Refresh(ctx context.Context) error {
	if s.sub == nil {
		return ErrNoSubscription
	}

	delete(s.cache, s.sub.productID)
	reviews, err := s.Query(ctx, s.sub.productID)
	metrics.RecordSyncRefresh(err)
	s.deliver(reviews, err)
	return err
}

func (s *ReviewSynchronizer) Mutate(ctx context.Context, review entity.NewReview) error {
	created, err := s.store.AddReview(ctx, review)
	if err != nil {
		return &SubmissionError{Err: err}
	}

	event := logger.Info()
	if created != nil {
		event = event.Str("review_id", created.ID)
	}
	event.
		Str("product_id", review.ProductID).
		Int("rating", review.Rating).
		Msg("Review submitted")
	return nil
}

func (s *ReviewSynchronizer) deliver(reviews []entity.Review, err error) {
	if s.sub == nil {
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("product_id", s.sub.productID).Msg("Failed to fetch reviews")
		if s.sub.onError != nil {
			s.sub.onError(err)
		}
		return
	}
	if s.sub.onData != nil {
		s.sub.onData(reviews)
	}
}
