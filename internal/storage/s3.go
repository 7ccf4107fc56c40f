// Package storage keeps uploaded files in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"gig-marketplace-api/internal/entity"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

const avatarFolder = "avatars"

type Config struct {
	Region          string
	AccessKeyId     string
	SecretAccessKey string
	Bucket          string
}

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type S3Storage struct {
	uploader uploader
	bucket   string
	region   string
}

func NewS3Storage(cfg Config) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyId, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Storage{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
	}, nil
}

// SaveFile uploads file under a generated key and returns its public url.
func (s *S3Storage) SaveFile(ctx context.Context, file io.Reader, mimetype string, name string, size int64) (*entity.StoredFile, error) {
	key := path.Join(avatarFolder, uuid.NewString()+strings.ToLower(path.Ext(name)))

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimetype),
	}, func(u *s3manager.Uploader) {
		if size > 0 && size < u.PartSize {
			u.Concurrency = 1
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	location := out.Location
	if location == "" {
		location = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}

	return &entity.StoredFile{SecureUrl: location}, nil
}
