package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// FirebaseStorage uploads files to the project's storage bucket.
type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStorage(bucket *gcs.BucketHandle, bucketName string) *FirebaseStorage {
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}
}

// Upload writes the file to the bucket under key and returns its public URL.
func (s *FirebaseStorage) Upload(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload of %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the public URL for an uploaded object.
func (s *FirebaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}
