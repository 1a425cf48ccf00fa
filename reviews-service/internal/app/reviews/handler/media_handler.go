package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"reviewsection/pkg/logger"
	"reviewsection/reviews-service/internal/app/reviews/entity"
	"reviewsection/reviews-service/internal/app/reviews/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// Принимаем только картинки, тип определяется по содержимому, а не по заголовку клиента
var allowedImageTypes = []string{"image/png", "image/jpeg"}

type MediaHandler struct {
	mediaService service.MediaServiceInterface
	maxFiles     int
	maxFileSize  int64
}

func NewMediaHandler(mediaService service.MediaServiceInterface, maxFiles int, maxFileSize int64) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		maxFiles:     maxFiles,
		maxFileSize:  maxFileSize,
	}
}

// UploadImages принимает multipart поле files и возвращает ID в порядке загрузки
func (h *MediaHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files is required"})
		return
	}
	if len(headers) > h.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files, max " + strconv.Itoa(h.maxFiles)})
		return
	}

	uploads := make([]entity.ImageUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > h.maxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large: " + header.Filename})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + header.Filename})
			return
		}
		defer file.Close()

		detected, err := detectImageType(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + header.Filename})
			return
		}
		if detected == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type: " + header.Filename})
			return
		}

		uploads = append(uploads, entity.ImageUpload{
			Name:        filepath.Base(header.Filename),
			ContentType: detected,
			Content:     file,
		})
	}

	stored, err := h.mediaService.UploadImages(c.Request.Context(), uploads)
	if err != nil {
		logger.Error().Err(err).Int("stored", len(stored)).Msg("Image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload images"})
		return
	}

	files := make([]entity.UploadedImage, 0, len(stored))
	for _, image := range stored {
		files = append(files, entity.UploadedImage{ID: image.ID, Name: image.Name})
	}

	c.JSON(http.StatusCreated, entity.UploadImagesResponse{Files: files})
}

func (h *MediaHandler) GetImage(c *gin.Context) {
	image, content, err := h.mediaService.OpenImage(c.Request.Context(), c.Param("image_id"))
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get image"})
		return
	}
	defer content.Close()

	// Записи, сохраненные до проверки содержимого, отдаем как бинарные данные
	contentType := "application/octet-stream"
	if isAllowedImageType(image.ContentType) {
		contentType = image.ContentType
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, image.Size, contentType, content, nil)
}

// detectImageType возвращает MIME тип по сигнатуре файла или "" для неподдерживаемых.
// После проверки файл перематывается в начало.
func detectImageType(file multipart.File) (string, error) {
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", nil
}

func isAllowedImageType(contentType string) bool {
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
