package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyExistingKey = "idempotency_existing"
	idempotencyNewKey      = "idempotency_key"
	idempotencyHashKey     = "idempotency_request_hash"
)

// IdempotencyMiddleware handles idempotency key validation. A key seen before
// with the same body is handed to the handler for replay; the same key with a
// different body, path or actor is a conflict.
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		// Read request body
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		// The path is part of the hash so a key cannot be reused across shipments
		hash := sha256.New()
		hash.Write([]byte(c.Request.URL.Path))
		hash.Write([]byte{0})
		hash.Write(body)
		requestHash := hex.EncodeToString(hash.Sum(nil))

		existingKey, err := keys.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to check idempotency key"})
			c.Abort()
			return
		}

		if existingKey != nil {
			actor, _ := GetActorFromContext(c)
			if existingKey.RequestHash != requestHash || actor == nil || actor.ID != existingKey.ActorID {
				c.JSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with different payload",
				})
				c.Abort()
				return
			}
			c.Set(idempotencyExistingKey, existingKey)
		} else {
			// New key - stored together with the change it guards
			c.Set(idempotencyNewKey, idempotencyKey)
			c.Set(idempotencyHashKey, requestHash)
		}

		c.Next()
	}
}

// GetIdempotencyInfo retrieves idempotency information from context
func GetIdempotencyInfo(c *gin.Context) (key string, requestHash string, existing *domain.IdempotencyKey) {
	if v, exists := c.Get(idempotencyExistingKey); exists {
		if k, ok := v.(*domain.IdempotencyKey); ok {
			return "", "", k
		}
	}

	keyVal, _ := c.Get(idempotencyNewKey)
	hashVal, _ := c.Get(idempotencyHashKey)

	key, _ = keyVal.(string)
	requestHash, _ = hashVal.(string)

	return key, requestHash, nil
}
