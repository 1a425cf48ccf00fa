package widget

import (
	"context"
	"sync"

	"reviewsection/pkg/logger"
	"reviewsection/review-section/internal/app/section/infrastructure"
)

// ReviewImages отдает ссылки на изображения отзыва, пустой список при любой ошибке.
// Изображения отзыва не меняются после создания, поэтому успешные ответы запоминаются.
type ReviewImages struct {
	images infrastructure.ImageStore

	mu     sync.Mutex
	loaded map[string][]string
}

func NewReviewImages(images infrastructure.ImageStore) *ReviewImages {
	return &ReviewImages{images: images, loaded: make(map[string][]string)}
}

func (g *ReviewImages) URLs(ctx context.Context, reviewID string) []string {
	if reviewID == "" {
		return []string{}
	}

	g.mu.Lock()
	urls, ok := g.loaded[reviewID]
	g.mu.Unlock()
	if ok {
		return append([]string{}, urls...)
	}

	urls, err := g.images.GetReviewImages(ctx, reviewID)
	if err != nil {
		logger.Debug().Err(err).Str("review_id", reviewID).Msg("Failed to load review images")
		return []string{}
	}

	urls = append([]string{}, urls...)

	g.mu.Lock()
	g.loaded[reviewID] = urls
	g.mu.Unlock()

	return append([]string{}, urls...)
}
