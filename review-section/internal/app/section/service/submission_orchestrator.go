package service

import (
	"context"
	"errors"
	"strings"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/metrics"
	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/infrastructure"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeInvalid   = "invalid"
)

var (
	SuccessToast = entity.Toast{Title: "Success", Message: "Review added successfully", Severity: entity.SeveritySuccess}
	FailureToast = entity.Toast{Title: "Error", Message: "Failed to add review", Severity: entity.SeverityError}
)

// SubmissionOrchestrator ведет цикл черновик -> проверка -> отправка -> уведомление -> сброс
type SubmissionOrchestrator struct {
	sync       ReviewDataSynchronizer
	toasts     infrastructure.ToastSink
	productID  string
	actingUser string

	draft       entity.SubmissionDraft
	status      entity.SubmissionStatus
	fieldErrors entity.FieldErrors

	statusListeners []func(entity.SubmissionStatus)
}

func NewSubmissionOrchestrator(
	sync ReviewDataSynchronizer,
	toasts infrastructure.ToastSink,
	productID string,
	actingUser string,
) *SubmissionOrchestrator {
	return &SubmissionOrchestrator{
		sync:       sync,
		toasts:     toasts,
		productID:  productID,
		actingUser: actingUser,
		draft:      entity.SubmissionDraft{AttachedImageIDs: []string{}},
		status:     entity.StatusIdle,
	}
}

func (o *SubmissionOrchestrator) OnStatusChange(fn func(entity.SubmissionStatus)) {
	o.statusListeners = append(o.statusListeners, fn)
}

// HandleRatingSelected принимает событие ratingclick от виджета звезд
func (o *SubmissionOrchestrator) HandleRatingSelected(rating int) {
	if o.status != entity.StatusIdle {
		return
	}
	o.draft.Rating = rating
	o.fieldErrors.Rating = false
}

func (o *SubmissionOrchestrator) HandleCommentChanged(comment string) {
	if o.status != entity.StatusIdle {
		return
	}
	o.draft.Comment = comment
	o.fieldErrors.Comment = false
}

// HandleImagesUploaded заменяет прикрепленные изображения идентификаторами из события
func (o *SubmissionOrchestrator) HandleImagesUploaded(ids []string) {
	if o.status != entity.StatusIdle {
		return
	}
	o.draft.AttachedImageIDs = append([]string{}, ids...)
}

func (o *SubmissionOrchestrator) Draft() entity.SubmissionDraft {
	return o.draft.Clone()
}

func (o *SubmissionOrchestrator) Status() entity.SubmissionStatus {
	return o.status
}

func (o *SubmissionOrchestrator) FieldErrors() entity.FieldErrors {
	return o.fieldErrors
}

// CanSubmit - состояние кнопки отправки
func (o *SubmissionOrchestrator) CanSubmit() bool {
	return o.status == entity.StatusIdle && validate(o.draft) == nil
}

// Submit проверяет черновик и отправляет его. Возвращает *ValidationError,
// *SubmissionError или ErrSubmissionInProgress; в любом случае кроме
// ErrSubmissionInProgress статус по выходу снова Idle.
func (o *SubmissionOrchestrator) Submit(ctx context.Context) error {
	if o.status != entity.StatusIdle {
		return ErrSubmissionInProgress
	}

	o.setStatus(entity.StatusValidating)
	if verr := validate(o.draft); verr != nil {
		o.fieldErrors = entity.FieldErrors{Rating: verr.Rating, Comment: verr.Comment}
		metrics.RecordSubmission(outcomeInvalid)
		o.setStatus(entity.StatusIdle)
		return verr
	}
	o.fieldErrors = entity.FieldErrors{}

	o.setStatus(entity.StatusSubmitting)
	payload := entity.NewReview{
		ProductID:  o.productID,
		Rating:     o.draft.Rating,
		Comment:    o.draft.Comment,
		ActingUser: o.actingUser,
		ImageIDs:   append([]string{}, o.draft.AttachedImageIDs...),
	}

	if err := o.sync.Mutate(ctx, payload); err != nil {
		var subErr *SubmissionError
		if !errors.As(err, &subErr) {
			subErr = &SubmissionError{Err: err}
		}

		o.setStatus(entity.StatusFailed)
		logger.Warn().Err(err).Str("product_id", o.productID).Msg("Review submission failed")
		o.toasts.Show(FailureToast)
		metrics.RecordSubmission(outcomeFailed)
		o.setStatus(entity.StatusIdle)
		return subErr
	}

	o.setStatus(entity.StatusSucceeded)
	o.toasts.Show(SuccessToast)
	o.draft.Comment = ""
	o.draft.AttachedImageIDs = []string{}

	// Ошибка чтения не отменяет успешную отправку, список покажет последнее известное состояние
	if err := o.sync.Refresh(ctx); err != nil {
		logger.Error().Err(err).Str("product_id", o.productID).Msg("Failed to refresh reviews after submission")
	}

	metrics.RecordSubmission(outcomeSucceeded)
	o.setStatus(entity.StatusIdle)
	return nil
}

func (o *SubmissionOrchestrator) setStatus(status entity.SubmissionStatus) {
	o.status = status
	for _, fn := range o.statusListeners {
		fn(status)
	}
}

func validate(draft entity.SubmissionDraft) *ValidationError {
	verr := &ValidationError{
		Rating:  draft.Rating == 0,
		Comment: strings.TrimSpace(draft.Comment) == "",
	}
	if verr.Rating || verr.Comment {
		return verr
	}
	return nil
}
