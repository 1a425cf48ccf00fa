package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"reviewsection/pkg/metrics"
	"reviewsection/reviews-service/internal/app/reviews/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const imagesBucket = "review_images"

type imageRepository struct {
	bucket *gridfs.Bucket
}

// NewImageRepository открывает GridFS bucket review_images
func NewImageRepository(db *mongo.Database) (ImageRepository, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imagesBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &imageRepository{bucket: bucket}, nil
}

// Save загружает файл целиком в GridFS; тип содержимого хранится в metadata
func (r *imageRepository) Save(_ context.Context, upload entity.ImageUpload) (*entity.StoredImage, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, imagesBucket)
	defer timer.ObserveDuration()

	counter := &countingReader{r: upload.Content}
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": upload.ContentType})

	id, err := r.bucket.UploadFromStream(upload.Name, counter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &entity.StoredImage{
		ID:          id.Hex(),
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Size:        counter.n,
	}, nil
}

// Open возвращает метаданные и поток чтения файла; поток закрывает вызывающий
func (r *imageRepository) Open(_ context.Context, id string) (*entity.StoredImage, io.ReadCloser, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrImageNotFound
	}

	stream, err := r.bucket.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrImageNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}

	file := stream.GetFile()
	image := &entity.StoredImage{
		ID:          id,
		Name:        file.Name,
		ContentType: "application/octet-stream",
		Size:        file.Length,
	}
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok && ct != "" {
			image.ContentType = ct
		}
	}

	return image, stream, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
