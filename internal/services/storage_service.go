// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/verdantcare/wellness-backend/internal/config"
)

// StorageService writes seal artifacts to the blob store. With AWS
// credentials configured it targets S3; otherwise it falls back to a local
// directory for development and tests. Artifacts are content-addressed by
// payload hash, so re-writing the same seal is idempotent.
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local fallback for development
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// StoreSeal persists a rendered seal PNG under its payload hash and returns
// the stored path.
func (s *StorageService) StoreSeal(payloadHash string, data []byte) (string, error) {
	key := fmt.Sprintf("seals/%s.png", payloadHash)

	if s.s3Client != nil {
		_, err := s.s3Client.PutObject(&s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.AWS.S3Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentType:   aws.String("image/png"),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload seal to S3: %w", err)
		}
		return key, nil
	}

	localPath := filepath.Join(s.cfg.Storage.LocalDir, key)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create seal directory: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write seal file: %w", err)
	}
	return localPath, nil
}

// ReadSeal fetches a stored seal artifact by path (local fallback only; S3
// paths are served through the CDN, not the API).
func (s *StorageService) ReadSeal(path string) ([]byte, error) {
	if s.s3Client != nil {
		return nil, fmt.Errorf("seal artifacts on S3 are served by URL, not the API")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seal file: %w", err)
	}
	return data, nil
}
