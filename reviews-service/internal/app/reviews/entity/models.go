package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review неизменяем после создания: сервис не обновляет и не удаляет отзывы
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"`
	UserID    string             `json:"user_id" bson:"user_id"`     // Автор отзыва (UUID из Auth Service)
	Rating    int                `json:"rating" bson:"rating"`       // Оценка от 1 до 5
	Comment   string             `json:"comment" bson:"comment"`     // Текст отзыва
	ImageIDs  []string           `json:"image_ids" bson:"image_ids"` // ID файлов в GridFS, порядок загрузки
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type ReviewEvent struct {
	EventType  string    `json:"event_type"` // REVIEW_CREATED
	ReviewID   string    `json:"review_id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	ImageCount int       `json:"image_count"`
	Timestamp  time.Time `json:"timestamp"`
}

const EventReviewCreated = "REVIEW_CREATED"

// StoredImage метаданные файла в GridFS
type StoredImage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// User запись справочника пользователей в PostgreSQL (таблица Auth Service)
type User struct {
	ID   string `gorm:"primaryKey;type:uuid"`
	Name string
}

func (User) TableName() string {
	return "users"
}
