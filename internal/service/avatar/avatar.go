package avatar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avelichko/contactkeeper/internal/logger"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
)

// GravatarURL builds the default avatar for a fresh account.
// d=404 makes gravatar answer Not Found instead of a generated image, the
// same setting the web client expects.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=404&s=500", hex.EncodeToString(sum[:]))
}

type Config struct {
	// S3 or S3-compatible (minio) storage
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string

	// Base for the public object URL; defaults to <endpoint>/<bucket>
	PublicBaseURL string
}

type cacheInvalidator interface {
	Delete(ctx context.Context, email string) error
}

// Disabled stands in when no object storage is configured: uploads fail,
// everything else about the account keeps working
type Disabled struct{}

func (Disabled) Upload(context.Context, models.User, io.Reader, string) (models.User, error) {
	return models.User{}, errors.New("avatar storage is not configured")
}

// Avatar uploads: object storage in front, users table behind
type Service struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string

	storage repository.Storage
	cache   cacheInvalidator
	logger  logger.Logger
}

func NewService(ctx context.Context, cfg Config, storage repository.Storage, cache cacheInvalidator, l logger.Logger) (*Service, error) {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("avatar bucket must not be empty")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("error while loading s3 config. Err: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // minio and friends route by path, not subdomain
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &Service{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		storage:       storage,
		cache:         cache,
		logger:        l,
	}, nil
}

// Upload stores the image under a per-user key, writes the public URL back
// to the user row and drops the cached snapshot so the next request sees it
func (s *Service) Upload(ctx context.Context, user models.User, body io.Reader, contentType string) (models.User, error) {
	key := "avatars/" + user.Email

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("error while uploading avatar. Err: %w", err)
	}

	updated, err := s.storage.User().UpdateAvatar(ctx, user.Email, s.publicBaseURL+"/"+key)
	if err != nil {
		return models.User{}, err
	}

	s.dropCached(ctx, user.Email)

	return updated, nil
}

// Stale cache entries expire on their own, losing the invalidation only
// delays the new avatar, so a failure is logged and not returned
func (s *Service) dropCached(ctx context.Context, email string) {
	if err := s.cache.Delete(ctx, email); err != nil {
		s.logger.Warn("can't drop cached user after avatar change", "email", email, "error", err.Error())
	}
}
