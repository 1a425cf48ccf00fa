package service

import (
	"context"
	"errors"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/rating"
	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/widget"
)

var ErrSectionStopped = errors.New("review section stopped")

// View - снимок состояния секции для отрисовки
type View struct {
	ProductID        string
	Stars            []widget.StarVisual
	SelectedRating   int
	Draft            entity.SubmissionDraft
	FieldErrors      entity.FieldErrors
	Status           entity.SubmissionStatus
	CanSubmit        bool
	Reviews          []entity.Review
	Distribution     []rating.Entry
	HasUserCommented bool
	Uploaded         []entity.UploadedFile
	LastFetchError   error
}

type command struct {
	fn   func(ctx context.Context) error
	done chan error // nil для событий, которых никто не ждет
}

// ReviewSection владеет виджетом звезд, загрузчиком, оркестратором и подпиской.
// Все их методы вызываются только из горутины Run.
type ReviewSection struct {
	productID    string
	actingUser   string
	stars        *widget.StarRating
	uploader     *widget.ImageUploader
	orchestrator *SubmissionOrchestrator
	sync         *ReviewSynchronizer

	reviews          []entity.Review
	distribution     []rating.Entry
	hasUserCommented bool
	lastFetchError   error

	commands chan command
	stopped  chan struct{}
}

func NewReviewSection(
	productID string,
	actingUser string,
	stars *widget.StarRating,
	uploader *widget.ImageUploader,
	orchestrator *SubmissionOrchestrator,
	sync *ReviewSynchronizer,
) *ReviewSection {
	s := &ReviewSection{
		productID:    productID,
		actingUser:   actingUser,
		stars:        stars,
		uploader:     uploader,
		orchestrator: orchestrator,
		sync:         sync,
		reviews:      []entity.Review{},
		distribution: []rating.Entry{},
		commands:     make(chan command, 16),
		stopped:      make(chan struct{}),
	}

	stars.OnRatingClick(orchestrator.HandleRatingSelected)
	uploader.OnImagesUploaded(orchestrator.HandleImagesUploaded)

	return s
}

// Run подписывается на отзывы товара и обрабатывает команды до отмены ctx
func (s *ReviewSection) Run(ctx context.Context) {
	defer close(s.stopped)

	s.sync.Subscribe(ctx, s.productID, s.onReviews, s.onFetchError)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			err := cmd.fn(ctx)
			if cmd.done != nil {
				cmd.done <- err
			}
		}
	}
}

// Do выполняет fn в цикле событий и ждет результата
func (s *ReviewSection) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	select {
	case s.commands <- command{fn: fn, done: done}:
	case <-s.stopped:
		return ErrSectionStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-s.stopped:
		return ErrSectionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post ставит fn в очередь без ожидания; false, если очередь полна или цикл остановлен
func (s *ReviewSection) Post(fn func(ctx context.Context) error) bool {
	select {
	case <-s.stopped:
		return false
	default:
	}

	select {
	case s.commands <- command{fn: fn}:
		return true
	default:
		return false
	}
}

func (s *ReviewSection) Hover(ctx context.Context, index int) error {
	return s.Do(ctx, func(context.Context) error { return s.stars.Hover(index) })
}

func (s *ReviewSection) Unhover(ctx context.Context) error {
	return s.Do(ctx, func(context.Context) error {
		s.stars.Unhover()
		return nil
	})
}

func (s *ReviewSection) Click(ctx context.Context, index int) error {
	return s.Do(ctx, func(context.Context) error { return s.stars.Click(index) })
}

func (s *ReviewSection) SetComment(ctx context.Context, comment string) error {
	return s.Do(ctx, func(context.Context) error {
		s.orchestrator.HandleCommentChanged(comment)
		return nil
	})
}

func (s *ReviewSection) Upload(ctx context.Context, files []entity.UploadFile) ([]entity.UploadedFile, error) {
	var uploaded []entity.UploadedFile
	err := s.Do(ctx, func(ctx context.Context) error {
		var err error
		uploaded, err = s.uploader.Upload(ctx, files)
		return err
	})
	return uploaded, err
}

func (s *ReviewSection) Submit(ctx context.Context) error {
	return s.Do(ctx, s.orchestrator.Submit)
}

func (s *ReviewSection) Refresh(ctx context.Context) error {
	return s.Do(ctx, s.sync.Refresh)
}

// RequestRefresh - асинхронный вариант Refresh для планировщика
func (s *ReviewSection) RequestRefresh() bool {
	return s.Post(s.sync.Refresh)
}

func (s *ReviewSection) Snapshot(ctx context.Context) (View, error) {
	var view View
	err := s.Do(ctx, func(context.Context) error {
		view = s.view()
		return nil
	})
	return view, err
}

func (s *ReviewSection) view() View {
	reviews := make([]entity.Review, len(s.reviews))
	copy(reviews, s.reviews)
	distribution := make([]rating.Entry, len(s.distribution))
	copy(distribution, s.distribution)

	return View{
		ProductID:        s.productID,
		Stars:            s.stars.Stars(),
		SelectedRating:   s.stars.SelectedRating(),
		Draft:            s.orchestrator.Draft(),
		FieldErrors:      s.orchestrator.FieldErrors(),
		Status:           s.orchestrator.Status(),
		CanSubmit:        s.orchestrator.CanSubmit(),
		Reviews:          reviews,
		Distribution:     distribution,
		HasUserCommented: s.hasUserCommented,
		Uploaded:         s.uploader.Files(),
		LastFetchError:   s.lastFetchError,
	}
}

func (s *ReviewSection) onReviews(reviews []entity.Review) {
	s.lastFetchError = nil
	s.reviews = reviews

	s.distribution = rating.Distribution(reviews, func(r entity.Review) int { return r.Rating })
	if s.distribution == nil {
		s.distribution = []rating.Entry{}
	}

	s.hasUserCommented = false
	for _, r := range reviews {
		if s.actingUser != "" && r.UserID == s.actingUser {
			s.hasUserCommented = true
			break
		}
	}

	logger.Debug().
		Str("product_id", s.productID).
		Int("reviews", len(reviews)).
		Bool("has_user_commented", s.hasUserCommented).
		Msg("Reviews updated")
}

// onFetchError оставляет последнее известное состояние списка и распределения
func (s *ReviewSection) onFetchError(err error) {
	s.lastFetchError = err
}
