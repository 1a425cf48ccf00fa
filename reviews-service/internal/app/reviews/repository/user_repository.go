package repository

import (
	"context"
	"fmt"

	"reviewsection/pkg/metrics"
	"reviewsection/reviews-service/internal/app/reviews/entity"

	"gorm.io/gorm"
)

// userRepository читает имена пользователей из PostgreSQL через GORM
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var users []entity.User
	result := r.db.WithContext(ctx).Where("id = ?", id).Find(&users)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}

	if len(users) == 0 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}
