package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/anandpskerala/ArticleHubBackend/pkg/response"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// ContextKeyIdempotencyKey is the gin context key for idempotency key
	ContextKeyIdempotencyKey = "idempotency_key"
	// ContextKeyUserID is the gin context key the auth gate stores the caller under
	ContextKeyUserID = "user_id"

	IdempotencyKeyPrefix = "idempotency:"
)

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	ResponseBody []byte            `json:"response_body,omitempty"`
}

// RedisClient is the subset of Redis commands the middleware needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight record blocks retries
	ProcessingTTL time.Duration
	// Required rejects requests without the header instead of passing them through
	Required bool
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(rdb RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         rdb,
		TTL:           24 * time.Hour,
		ProcessingTTL: 60 * time.Second,
	}
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Keys are scoped to the caller, method, path and body. Redis failures fail open.
func Idempotency(cfg *IdempotencyConfig) gin.HandlerFunc {
	if cfg.ProcessingTTL == 0 {
		cfg.ProcessingTTL = 60 * time.Second
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest("X-Idempotency-Key header is required"))
				return
			}
			c.Next()
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		hash := requestHash(c, body)
		redisKey := IdempotencyKeyPrefix + c.GetString(ContextKeyUserID) + ":" + key
		ctx := c.Request.Context()

		existing, err := getRecord(ctx, cfg.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, hash)
			return
		}

		record := &IdempotencyRecord{Status: StatusProcessing, RequestHash: hash}
		acquired, err := setRecordNX(ctx, cfg.Redis, redisKey, record, cfg.ProcessingTTL)
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			if existing, _ = getRecord(ctx, cfg.Redis, redisKey); existing != nil {
				replay(c, existing, hash)
				return
			}
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = rw

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			// let the client retry a failed attempt with the same key
			_ = cfg.Redis.Del(ctx, redisKey).Err()
			return
		}

		record.Status = StatusCompleted
		record.ResponseCode = status
		record.ContentType = c.Writer.Header().Get("Content-Type")
		record.ResponseBody = rw.body.Bytes()
		_ = saveRecord(ctx, cfg.Redis, redisKey, record, cfg.TTL)
	}
}

// GetUserID returns the caller id stored by the auth gate
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

func replay(c *gin.Context, rec *IdempotencyRecord, hash string) {
	if rec.RequestHash != hash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
			response.Error("IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request"))
		return
	}
	if rec.Status == StatusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict,
			response.Conflict("A request with this idempotency key is already being processed"))
		return
	}
	contentType := rec.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.ResponseCode, contentType, rec.ResponseBody)
	c.Abort()
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(userID))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, rdb RedisClient, key string) (*IdempotencyRecord, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func setRecordNX(ctx context.Context, rdb RedisClient, key string, rec *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, data, ttl).Result()
}

func saveRecord(ctx context.Context, rdb RedisClient, key string, rec *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}
