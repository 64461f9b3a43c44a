package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
	"github.com/anandpskerala/ArticleHubBackend/pkg/retry"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.PutObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.DeleteObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)

	key := objectKey("/nexevent/articles/", "Photo.JPG", now)
	assert.True(t, strings.HasPrefix(key, "nexevent/articles/2026/04/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	bare := objectKey("", "noext", now)
	assert.True(t, strings.HasPrefix(bare, "2026/04/"), bare)
	assert.NotEqual(t, bare, objectKey("", "noext", now), "keys are unique")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://cdn.local/", "articles")

	obj, err := store.Upload(ctx, &Upload{Filename: "a.png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.URL, "http://cdn.local/articles/"), obj.URL)
	assert.True(t, store.Has(obj.ID))

	require.NoError(t, store.Destroy(ctx, obj.ID))
	assert.False(t, store.Has(obj.ID))
	assert.NoError(t, store.Destroy(ctx, "unknown"))

	_, err = store.Upload(ctx, &Upload{Filename: "empty.png", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrEmptyUpload)
	_, err = store.Upload(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestS3Store_Upload(t *testing.T) {
	client := &mockS3{}
	store := NewS3StoreWithClient(client, &S3Config{
		Endpoint: "http://minio:9000",
		Bucket:   "articlehub",
		Folder:   "nexevent/articles",
	})

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "articlehub" &&
			strings.HasPrefix(*in.Key, "nexevent/articles/") &&
			*in.ContentType == "image/png" &&
			*in.ContentLength == 3
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	obj, err := store.Upload(context.Background(), &Upload{
		Filename:    "x.png",
		ContentType: "image/png",
		Body:        strings.NewReader("abc"),
		Size:        3,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/articlehub/"+obj.ID, obj.URL)
	client.AssertExpectations(t)
}

func TestS3Store_UploadFailure(t *testing.T) {
	client := &mockS3{}
	store := NewS3StoreWithClient(client, &S3Config{Bucket: "b", Region: "eu-west-1"})
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

	_, err := store.Upload(context.Background(), &Upload{Filename: "x.png", Body: strings.NewReader("abc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	client.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestS3Store_DestroyRetries(t *testing.T) {
	client := &mockS3{}
	store := NewS3StoreWithClient(client, &S3Config{
		Bucket: "b",
		Retry:  retry.Fixed(3, time.Millisecond),
	})

	client.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Twice()
	client.On("DeleteObject", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Destroy(context.Background(), "k"))
	client.AssertNumberOfCalls(t, "DeleteObject", 3)

	assert.NoError(t, store.Destroy(context.Background(), ""))
	client.AssertNumberOfCalls(t, "DeleteObject", 3)
}

func TestS3Store_DefaultPublicURL(t *testing.T) {
	store := NewS3StoreWithClient(&mockS3{}, &S3Config{Bucket: "b", Region: "eu-west-1"})
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", store.baseURL)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(context.Background(), &config.MediaConfig{Provider: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(context.Background(), &config.MediaConfig{Provider: "ftp"})
	assert.Error(t, err)

	_, err = NewStore(context.Background(), &config.MediaConfig{Provider: "s3"})
	assert.Error(t, err, "bucket is required")
}
