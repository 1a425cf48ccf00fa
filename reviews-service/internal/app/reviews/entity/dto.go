package entity

import (
	"io"

	"reviewsection/pkg/rating"
)

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	ProductID  string   `json:"product_id" validate:"required"`
	Rating     int      `json:"rating" validate:"required,min=1,max=5"`
	Comment    string   `json:"comment" validate:"required,max=2000"`
	ActingUser string   `json:"acting_user,omitempty"` // Если передан, должен совпадать с пользователем из токена
	ImageIDs   []string `json:"image_ids" validate:"max=10,dive,required"`
}

// ImageUpload - один файл из multipart запроса
type ImageUpload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

type DistributionResponse struct {
	ProductID string         `json:"product_id"`
	Total     int            `json:"total"`
	Entries   []rating.Entry `json:"entries"`
}

type ReviewImagesResponse struct {
	URLs []string `json:"urls"`
}

type UploadedImage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UploadImagesResponse struct {
	Files []UploadedImage `json:"files"`
}

type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
