package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"reviewsection/review-section/internal/app/section/entity"
)

var ErrNotFound = errors.New("resource not found")

// ReviewsClient клиент для reviews-service
type ReviewsClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string // JWT токен пользователя, от имени которого пишутся отзывы
}

func NewReviewsClient(baseURL string, timeout time.Duration) *ReviewsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReviewsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ReviewsClient) SetAuthToken(token string) {
	c.authToken = token
}

type reviewListResponse struct {
	Reviews []entity.Review `json:"reviews"`
	Total   int             `json:"total"`
}

type reviewImagesResponse struct {
	URLs []string `json:"urls"`
}

type uploadImagesResponse struct {
	Files []entity.UploadedFile `json:"files"`
}

// GetReviews возвращает отзывы товара, новые первыми
func (c *ReviewsClient) GetReviews(ctx context.Context, productID string) ([]entity.Review, error) {
	var resp reviewListResponse
	if err := c.getJSON(ctx, "/reviews/product/"+url.PathEscape(productID), &resp); err != nil {
		return nil, err
	}
	if resp.Reviews == nil {
		return []entity.Review{}, nil
	}
	return resp.Reviews, nil
}

func (c *ReviewsClient) AddReview(ctx context.Context, review entity.NewReview) (*entity.Review, error) {
	if review.ImageIDs == nil {
		review.ImageIDs = []string{}
	}

	body, err := json.Marshal(review)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/reviews", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created entity.Review
	if err := c.do(req, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *ReviewsClient) GetReviewImages(ctx context.Context, reviewID string) ([]string, error) {
	var resp reviewImagesResponse
	if err := c.getJSON(ctx, "/reviews/"+url.PathEscape(reviewID)+"/images", &resp); err != nil {
		return nil, err
	}
	if resp.URLs == nil {
		return []string{}, nil
	}
	return resp.URLs, nil
}

// UploadImages отправляет файлы одним multipart запросом, порядок ответа совпадает с порядком файлов
func (c *ReviewsClient) UploadImages(ctx context.Context, files []entity.UploadFile) ([]entity.UploadedFile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/images", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp uploadImagesResponse
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *ReviewsClient) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *ReviewsClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *ReviewsClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return req, nil
}

func (c *ReviewsClient) do(req *http.Request, expected int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode != expected {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
