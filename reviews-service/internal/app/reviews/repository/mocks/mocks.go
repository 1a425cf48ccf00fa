package mocks

import (
	"context"
	"io"

	"reviewsection/reviews-service/internal/app/reviews/entity"

	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByProductID(ctx context.Context, productID string) ([]entity.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

// MockImageRepository мок для ImageRepository
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Save(ctx context.Context, upload entity.ImageUpload) (*entity.StoredImage, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StoredImage), args.Error(1)
}

func (m *MockImageRepository) Open(ctx context.Context, id string) (*entity.StoredImage, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.StoredImage), args.Get(1).(io.ReadCloser), args.Error(2)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockReviewCache мок для Redis кеша отзывов
type MockReviewCache struct {
	mock.Mock
}

func (m *MockReviewCache) GetProductReviews(ctx context.Context, productID string) ([]entity.Review, bool, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]entity.Review), args.Bool(1), args.Error(2)
}

func (m *MockReviewCache) ProductVersion(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewCache) SetProductReviews(ctx context.Context, productID string, reviews []entity.Review, version int64) error {
	args := m.Called(ctx, productID, reviews, version)
	return args.Error(0)
}

func (m *MockReviewCache) InvalidateProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockReviewCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
