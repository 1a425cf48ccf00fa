package mocks

import (
	"context"

	"reviewsection/review-section/internal/app/section/entity"

	"github.com/stretchr/testify/mock"
)

// MockReviewStore мок для ReviewStore
type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) GetReviews(ctx context.Context, productID string) ([]entity.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewStore) AddReview(ctx context.Context, review entity.NewReview) (*entity.Review, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

// MockImageStore мок для ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadImages(ctx context.Context, files []entity.UploadFile) ([]entity.UploadedFile, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UploadedFile), args.Error(1)
}

func (m *MockImageStore) GetReviewImages(ctx context.Context, reviewID string) ([]string, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUserDirectory мок для UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// ToastRecorder запоминает показанные уведомления
type ToastRecorder struct {
	Toasts []entity.Toast
}

func (r *ToastRecorder) Show(toast entity.Toast) {
	r.Toasts = append(r.Toasts, toast)
}
