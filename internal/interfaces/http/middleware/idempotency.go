package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fixer.backend/pkg/redis"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key and rejects concurrent attempts on the same key. The
// key is scoped per user so keys cannot collide across accounts.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s", userID, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		if err == nil {
			if val == processingMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "Request already in progress",
					"code":  "ERR_IDEMPOTENCY_CONFLICT",
				})
				return
			}

			var cached cachedResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.Header("Content-Type", "application/json")
				c.Header("X-Idempotency-Hit", "true")
				c.String(cached.Status, cached.Body)
				c.Abort()
				return
			}
			// Unreadable cache entry; fall through and reprocess.
		}

		locked, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			// Redis down: idempotency degrades to best effort, the
			// payments unique key still prevents double charges.
			c.Next()
			return
		}
		if !locked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "Request already in progress",
				"code":  "ERR_IDEMPOTENCY_CONFLICT",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: w.body.String()})
			_ = redisSet(ctx, storageKey, string(payload), RetentionDuration)
		} else {
			// Failed attempts release the key so the client may retry.
			_ = redisDel(ctx, storageKey)
		}
	}
}
