package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/anandpskerala/ArticleHubBackend/pkg/retry"
)

// S3Config configures the S3 store
type S3Config struct {
	Endpoint  string // empty for AWS, set for MinIO and friends
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL roots the returned URLs; defaults to endpoint/bucket
	PublicURL string
	Folder    string
	Retry     retry.Policy
}

// S3API is the subset of the S3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads images to an S3 bucket
type S3Store struct {
	client  S3API
	bucket  string
	folder  string
	baseURL string
	policy  retry.Policy
	now     func() time.Time
}

// NewS3Store builds an S3 client from static credentials
func NewS3Store(ctx context.Context, cfg *S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client S3API, cfg *S3Config) *S3Store {
	baseURL := cfg.PublicURL
	if baseURL == "" {
		switch {
		case cfg.Endpoint != "":
			baseURL = publicURL(cfg.Endpoint, cfg.Bucket)
		default:
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.Fixed(3, 200*time.Millisecond)
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
		baseURL: baseURL,
		policy:  policy,
		now:     time.Now,
	}
}

// Upload puts the body under a fresh key. The body can only be read once,
// so uploads are not retried; pass a seekable body for plain-HTTP endpoints.
func (s *S3Store) Upload(ctx context.Context, up *Upload) (*Object, error) {
	if up == nil || up.Body == nil {
		return nil, ErrEmptyUpload
	}
	key := objectKey(s.folder, up.Filename, s.now())

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   up.Body,
	}
	if up.ContentType != "" {
		in.ContentType = aws.String(up.ContentType)
	}
	if up.Size > 0 {
		in.ContentLength = aws.Int64(up.Size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("media: upload %s: %w", key, err)
	}
	return &Object{URL: publicURL(s.baseURL, key), ID: key}, nil
}

// Destroy deletes id with retries; S3 treats missing keys as success
func (s *S3Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(id),
		})
		return err
	}, nil)
	if err != nil {
		return fmt.Errorf("media: destroy %s: %w", id, err)
	}
	return nil
}
