package service

import (
	"context"
	"errors"
	"testing"

	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/infrastructure/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuery_CachesResult(t *testing.T) {
	store := new(mocks.MockReviewStore)
	sync := NewReviewSynchronizer(store)

	reviews := []entity.Review{{ID: "r1", Rating: 5}}
	store.On("GetReviews", mock.Anything, "p1").Return(reviews, nil).Once()

	first, err := sync.Query(context.Background(), "p1")
	require.NoError(t, err)
	second, err := sync.Query(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, reviews, first)
	assert.Equal(t, reviews, second)
	store.AssertNumberOfCalls(t, "GetReviews", 1)
}

func TestQuery_ErrorIsDataFetchError(t *testing.T) {
	store := new(mocks.MockReviewStore)
	sync := NewReviewSynchronizer(store)

	cause := errors.New("connection reset")
	store.On("GetReviews", mock.Anything, "p1").Return(nil, cause)

	_, err := sync.Query(context.Background(), "p1")

	var fetchErr *DataFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "p1", fetchErr.ProductID)
	assert.ErrorIs(t, err, cause)
}

func TestSubscribeAndRefresh(t *testing.T) {
	store := new(mocks.MockReviewStore)
	sync := NewReviewSynchronizer(store)

	initial := []entity.Review{{ID: "r1", Rating: 4}}
	updated := []entity.Review{{ID: "r2", Rating: 5}, {ID: "r1", Rating: 4}}
	store.On("GetReviews", mock.Anything, "p1").Return(initial, nil).Once()
	store.On("GetReviews", mock.Anything, "p1").Return(updated, nil).Once()

	var delivered [][]entity.Review
	sync.Subscribe(context.Background(), "p1", func(r []entity.Review) {
		delivered = append(delivered, r)
	}, func(err error) {
		t.Fatalf("unexpected error: %v", err)
	})

	require.NoError(t, sync.Refresh(context.Background()))

	assert.Equal(t, [][]entity.Review{initial, updated}, delivered)

	// После refresh кеш снова заполнен
	cached, err := sync.Query(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, updated, cached)
	store.AssertNumberOfCalls(t, "GetReviews", 2)
}

func TestRefresh_ErrorDeliveredToSubscriber(t *testing.T) {
	store := new(mocks.MockReviewStore)
	sync := NewReviewSynchronizer(store)

	store.On("GetReviews", mock.Anything, "p1").Return([]entity.Review{}, nil).Once()
	store.On("GetReviews", mock.Anything, "p1").Return(nil, errors.New("503")).Once()

	var errs []error
	sync.Subscribe(context.Background(), "p1", func([]entity.Review) {}, func(err error) {
		errs = append(errs, err)
	})

	err := sync.Refresh(context.Background())
	require.Error(t, err)
	require.Len(t, errs, 1)

	var fetchErr *DataFetchError
	assert.True(t, errors.As(errs[0], &fetchErr))
}

func TestRefresh_WithoutSubscription(t *testing.T) {
	sync := NewReviewSynchronizer(new(mocks.MockReviewStore))
	assert.ErrorIs(t, sync.Refresh(context.Background()), ErrNoSubscription)
}

func TestMutate(t *testing.T) {
	store := new(mocks.MockReviewStore)
	sync := NewReviewSynchronizer(store)

	ok := entity.NewReview{ProductID: "p1", Rating: 5, Comment: "good"}
	bad := entity.NewReview{ProductID: "p1", Rating: 1, Comment: "bad"}
	store.On("AddReview", mock.Anything, ok).Return(&entity.Review{ID: "r1"}, nil)
	store.On("AddReview", mock.Anything, bad).Return(nil, errors.New("500"))

	assert.NoError(t, sync.Mutate(context.Background(), ok))

	err := sync.Mutate(context.Background(), bad)
	var subErr *SubmissionError
	assert.True(t, errors.As(err, &subErr))
}
