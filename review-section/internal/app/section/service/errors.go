package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// ValidationError перечисляет невалидные поля черновика
type ValidationError struct {
	Rating  bool
	Comment bool
}

func (e *ValidationError) Error() string {
	var fields []string
	if e.Rating {
		fields = append(fields, "rating")
	}
	if e.Comment {
		fields = append(fields, "comment")
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SubmissionError - отказ транспорта или сервера при создании отзыва
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "failed to submit review: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// DataFetchError - не удалось прочитать отзывы товара
type DataFetchError struct {
	ProductID string
	Err       error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch reviews for product %s: %v", e.ProductID, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}
