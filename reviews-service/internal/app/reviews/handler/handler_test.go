package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"reviewsection/pkg/rating"
	"reviewsection/reviews-service/internal/app/reviews/entity"
	"reviewsection/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) GetDistribution(ctx context.Context, productID string) (*entity.DistributionResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DistributionResponse), args.Error(1)
}

func (m *MockReviewService) GetReviewImages(ctx context.Context, reviewID string) ([]string, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadImages(ctx context.Context, uploads []entity.ImageUpload) ([]entity.StoredImage, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StoredImage), args.Error(1)
}

func (m *MockMediaService) OpenImage(ctx context.Context, imageID string) (*entity.StoredImage, io.ReadCloser, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.StoredImage), args.Get(1).(io.ReadCloser), args.Error(2)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type testDeps struct {
	reviews *MockReviewService
	media   *MockMediaService
	users   *MockUserService
}

func setupTestRouter() (*gin.Engine, *testDeps) {
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		reviews: new(MockReviewService),
		media:   new(MockMediaService),
		users:   new(MockUserService),
	}

	router := SetupRoutes(Handlers{
		Reviews: NewReviewHandler(deps.reviews),
		Media:   NewMediaHandler(deps.media, 2, 1024),
		Users:   NewUserHandler(deps.users),
	}, NewAuthMiddleware(testSecret))

	return router, deps
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	claims := JWTClaims{
		UserID: userID,
		Email:  "someone@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authorized(t *testing.T, req *http.Request, userID string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	return req
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reviews-service")
}

func TestAuthMiddleware_RejectsMissingAndInvalidTokens(t *testing.T) {
	router, _ := setupTestRouter()

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/reviews/product/p1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_RejectsForeignSignature(t *testing.T) {
	router, _ := setupTestRouter()

	claims := JWTClaims{UserID: "user-1"}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/reviews/product/p1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReviewHandler_Success(t *testing.T) {
	router, deps := setupTestRouter()

	reqBody := entity.CreateReviewRequest{
		ProductID: "product-1",
		Rating:    4,
		Comment:   "Nice",
		ImageIDs:  []string{"img-1"},
	}
	created := &entity.Review{
		ID:        primitive.NewObjectID(),
		ProductID: "product-1",
		UserID:    "user-1",
		Rating:    4,
		Comment:   "Nice",
		ImageIDs:  []string{"img-1"},
		CreatedAt: time.Now(),
	}

	deps.reviews.On("CreateReview", mock.Anything, "user-1", &reqBody).Return(created, nil)

	body, _ := json.Marshal(reqBody)
	req := authorized(t, httptest.NewRequest(http.MethodPost, "/reviews", bytes.NewReader(body)), "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, created.ID, response.ID)
	assert.Equal(t, 4, response.Rating)
	deps.reviews.AssertExpectations(t)
}

func TestCreateReviewHandler_ValidationErrors(t *testing.T) {
	router, deps := setupTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"product_id":`},
		{name: "rating out of range", body: `{"product_id":"p","rating":6,"comment":"x"}`},
		{name: "missing rating", body: `{"product_id":"p","comment":"x"}`},
		{name: "missing comment", body: `{"product_id":"p","rating":3}`},
		{name: "missing product", body: `{"rating":3,"comment":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authorized(t, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(tt.body)), "user-1")
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	deps.reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "acting user mismatch", err: service.ErrActingUserMismatch, wantStatus: http.StatusForbidden},
		{name: "blank comment", err: service.ErrEmptyComment, wantStatus: http.StatusBadRequest},
		{name: "storage failure", err: errors.New("mongo down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := setupTestRouter()
			deps.reviews.On("CreateReview", mock.Anything, "user-1", mock.Anything).Return(nil, tt.err)

			body := `{"product_id":"p","rating":3,"comment":"ok","acting_user":"user-2"}`
			req := authorized(t, httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body)), "user-1")
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetReviewsByProductHandler(t *testing.T) {
	router, deps := setupTestRouter()

	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), ProductID: "p1", Rating: 5, Comment: "a"},
		{ID: primitive.NewObjectID(), ProductID: "p1", Rating: 3, Comment: "b"},
	}
	deps.reviews.On("GetReviewsByProduct", mock.Anything, "p1").Return(reviews, nil)

	req := authorized(t, httptest.NewRequest(http.MethodGet, "/reviews/product/p1", nil), "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ReviewListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	assert.Len(t, response.Reviews, 2)
}

func TestGetReviewsByProductHandler_Error(t *testing.T) {
	router, deps := setupTestRouter()
	deps.reviews.On("GetReviewsByProduct", mock.Anything, "p1").Return(nil, errors.New("boom"))

	req := authorized(t, httptest.NewRequest(http.MethodGet, "/reviews/product/p1", nil), "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetDistributionHandler(t *testing.T) {
	router, deps := setupTestRouter()

	distribution := &entity.DistributionResponse{
		ProductID: "p1",
		Total:     4,
		Entries:   rating.Ratings([]int{5, 5, 5, 1}),
	}
	deps.reviews.On("GetDistribution", mock.Anything, "p1").Return(distribution, nil)

	req := authorized(t, httptest.NewRequest(http.MethodGet, "/reviews/product/p1/distribution", nil), "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"percentage":"75.00"`)
	assert.Contains(t, w.Body.String(), `"percentage":"25.00"`)
}

func TestGetReviewImagesHandler(t *testing.T) {
	router, deps := setupTestRouter()

	deps.reviews.On("GetReviewImages", mock.Anything, "r1").Return([]string{"http://cdn/images/a"}, nil)
	deps.reviews.On("GetReviewImages", mock.Anything, "missing").Return(nil, service.ErrReviewNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, httptest.NewRequest(http.MethodGet, "/reviews/r1/images", nil), "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ReviewImagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"http://cdn/images/a"}, response.URLs)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, httptest.NewRequest(http.MethodGet, "/reviews/missing/images", nil), "user-1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// Минимальные сигнатуры форматов
const (
	pngContent  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"
	jpegContent = "\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"
)

// typedPartRequest собирает multipart с явным Content-Type части, как это делает браузер
func typedPartRequest(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="files"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImagesHandler_Success(t *testing.T) {
	router, deps := setupTestRouter()

	deps.media.On("UploadImages", mock.Anything, mock.MatchedBy(func(uploads []entity.ImageUpload) bool {
		return len(uploads) == 1 && uploads[0].Name == "cat.png" && uploads[0].ContentType == "image/png"
	})).Return([]entity.StoredImage{{ID: "img-1", Name: "cat.png", Size: 4}}, nil)

	req := authorized(t, multipartRequest(t, map[string]string{"cat.png": pngContent}), "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.UploadImagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Files, 1)
	assert.Equal(t, "img-1", response.Files[0].ID)
	assert.Equal(t, "cat.png", response.Files[0].Name)
}

func TestUploadImagesHandler_StoresDetectedTypeAndFullContent(t *testing.T) {
	router, deps := setupTestRouter()

	var contentType string
	var content []byte
	deps.media.On("UploadImages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		uploads := args.Get(1).([]entity.ImageUpload)
		contentType = uploads[0].ContentType
		content, _ = io.ReadAll(uploads[0].Content)
	}).Return([]entity.StoredImage{{ID: "img-1", Name: "photo.jpg"}}, nil)

	// Заявленный клиентом тип игнорируется
	req := authorized(t, typedPartRequest(t, "photo.jpg", "text/html", jpegContent), "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, jpegContent, string(content))
}

func TestUploadImagesHandler_RejectsNonImageContent(t *testing.T) {
	router, deps := setupTestRouter()

	cases := []struct {
		name        string
		filename    string
		contentType string
		content     string
	}{
		{"html disguised as png", "x.png", "text/html", "<script>alert(1)</script>"},
		{"html declared as image", "x.png", "image/png", "<html><body onload=alert(1)></body></html>"},
		{"svg", "logo.svg", "image/svg+xml", `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`},
		{"plain text", "notes.png", "application/octet-stream", "just some text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authorized(t, typedPartRequest(t, tc.filename, tc.contentType, tc.content), "user-1"))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Unsupported image type")
		})
	}

	deps.media.AssertNotCalled(t, "UploadImages", mock.Anything, mock.Anything)
}

func TestUploadImagesHandler_Limits(t *testing.T) {
	router, deps := setupTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, multipartRequest(t, map[string]string{"a.png": "1", "b.png": "2", "c.png": "3"}), "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, multipartRequest(t, map[string]string{"big.png": strings.Repeat("x", 2048)}), "user-1"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, multipartRequest(t, map[string]string{}), "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	deps.media.AssertNotCalled(t, "UploadImages", mock.Anything, mock.Anything)
}

func TestGetImageHandler(t *testing.T) {
	router, deps := setupTestRouter()

	image := &entity.StoredImage{ID: "img-1", Name: "cat.png", ContentType: "image/png", Size: 4}
	deps.media.On("OpenImage", mock.Anything, "img-1").Return(image, io.NopCloser(strings.NewReader("meow")), nil)
	deps.media.On("OpenImage", mock.Anything, "missing").Return(nil, nil, service.ErrImageNotFound)

	// Публичный маршрут, без токена
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/img-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "meow", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetImageHandler_UnsafeStoredTypeServedAsBinary(t *testing.T) {
	router, deps := setupTestRouter()

	image := &entity.StoredImage{ID: "img-old", Name: "x.png", ContentType: "text/html", Size: 25}
	deps.media.On("OpenImage", mock.Anything, "img-old").
		Return(image, io.NopCloser(strings.NewReader("<script>alert(1)</script>")), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/images/img-old", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORS_NoCredentialsForWildcardOrigins(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/reviews", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestGetUserHandler(t *testing.T) {
	router, deps := setupTestRouter()

	deps.users.On("GetUser", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Ada Lovelace"}, nil)
	deps.users.On("GetUser", mock.Anything, "u2").Return(nil, service.ErrUserNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, httptest.NewRequest(http.MethodGet, "/users/u1", nil), "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Ada Lovelace", response.Name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authorized(t, httptest.NewRequest(http.MethodGet, "/users/u2", nil), "user-1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
