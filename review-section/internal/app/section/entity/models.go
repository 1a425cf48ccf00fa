package entity

import (
	"fmt"
	"time"
)

// Review - отзыв в том виде, в котором его отдает reviews-service
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	ImageIDs  []string  `json:"image_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview - тело запроса на создание отзыва
type NewReview struct {
	ProductID  string   `json:"product_id"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	ActingUser string   `json:"acting_user"`
	ImageIDs   []string `json:"image_ids"`
}

// SubmissionDraft - черновик отзыва, которым владеет только оркестратор
type SubmissionDraft struct {
	Rating           int // 0 - оценка не выбрана
	Comment          string
	AttachedImageIDs []string
}

// Clone возвращает копию, не разделяющую слайс с оригиналом
func (d SubmissionDraft) Clone() SubmissionDraft {
	ids := make([]string, len(d.AttachedImageIDs))
	copy(ids, d.AttachedImageIDs)
	d.AttachedImageIDs = ids
	return d
}

type SubmissionStatus int

const (
	StatusIdle SubmissionStatus = iota
	StatusValidating
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Toast - уведомление для пользователя
type Toast struct {
	Title    string
	Message  string
	Severity Severity
}

// UploadedFile - результат загрузки одного файла
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"` // doctype:image или doctype:unknown
}

// UploadFile - файл, выбранный пользователем для загрузки
type UploadFile struct {
	Name    string
	Content []byte
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldErrors - признаки ошибок полей формы
type FieldErrors struct {
	Rating  bool
	Comment bool
}

func (f FieldErrors) Any() bool {
	return f.Rating || f.Comment
}
