package middleware

import (
	"net/http"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the header clients send to make a mutation safe to
// retry
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects replayed mutations. A client retrying a checkout or
// transfer sends the same Idempotency-Key; the first request through records
// the key and every replay within the TTL gets a conflict instead of a
// second execution. Requests without the header pass through unchanged.
// Keys are scoped per tenant so two tenants cannot collide.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		scopedKey := c.GetString(TenantIDKey) + ":" + key
		isNew, err := store.MarkProcessed(c.Request.Context(), scopedKey, ttl)
		if err != nil {
			// Availability beats strictness; replay protection degrades
			// rather than blocking all mutations.
			log.Warn("idempotency store unavailable, allowing request",
				zap.String("idempotency_key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeDuplicateRequest,
					"Request with this Idempotency-Key was already accepted", c.GetString(RequestIDKey)))
			return
		}

		c.Next()
	}
}
