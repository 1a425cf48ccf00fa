package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/metrics"
	"reviewsection/reviews-service/internal/app/reviews/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	serviceName       = "reviews-service"
	reviewsCollection = "reviews"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound = errors.New("review not found")
	ErrImageNotFound  = errors.New("image not found")
	ErrUserNotFound   = errors.New("user not found")
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов и индексы product_id / user_id
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection(reviewsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("product_id_created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Str("collection", reviewsCollection).Msg("Failed to create indexes")
	}

	return &reviewRepository{
		collection: collection,
	}
}

// Create сохраняет новый отзыв и проставляет ID из результата вставки
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsCollection)
	defer timer.ObserveDuration()

	review.CreatedAt = time.Now().UTC()
	if review.ImageIDs == nil {
		review.ImageIDs = []string{}
	}

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByProductID получает отзывы товара, новые первыми
func (r *reviewRepository) GetByProductID(ctx context.Context, productID string) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"product_id": productID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// GetByID получает отзыв по ID, некорректный hex считается отсутствующим отзывом
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	defer timer.ObserveDuration()

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}
