package middleware

import (
	"net/http"

	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Gin context keys and headers for tenant scoping
const (
	TenantIDKey     = "tenant_id"
	BranchIDKey     = "branch_id"
	TenantHeaderKey = "X-Tenant-ID"
	BranchHeaderKey = "X-Branch-ID"
)

// TenantConfig holds tenant middleware configuration
type TenantConfig struct {
	// SkipPaths bypass tenant extraction (health checks and probes)
	SkipPaths []string
}

// DefaultTenantConfig returns the default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/healthz", "/readyz"},
	}
}

// Tenant extracts the tenant and branch scope from request headers. Every
// API request must name its tenant; the branch is optional and defaults to
// the head-office branch (the nil UUID).
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		tenantHeader := c.GetHeader(TenantHeaderKey)
		if tenantHeader == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeMissingTenant, "X-Tenant-ID header is required", c.GetString(RequestIDKey)))
			return
		}

		tenantID, err := uuid.Parse(tenantHeader)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "X-Tenant-ID must be a valid UUID", c.GetString(RequestIDKey)))
			return
		}

		branchID := uuid.Nil
		if branchHeader := c.GetHeader(BranchHeaderKey); branchHeader != "" {
			branchID, err = uuid.Parse(branchHeader)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "X-Branch-ID must be a valid UUID", c.GetString(RequestIDKey)))
				return
			}
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Set(BranchIDKey, branchID.String())

		// Enrich the request-scoped logger so downstream logs carry the
		// tenant and branch fields.
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, log = logger.WithTenantID(ctx, log, tenantID.String())
		ctx, _ = logger.WithBranchID(ctx, log, branchID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID returns the tenant ID set by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value := c.GetString(TenantIDKey)
	if value == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetBranchID returns the branch ID set by the Tenant middleware. The nil
// UUID identifies the head-office branch.
func GetBranchID(c *gin.Context) uuid.UUID {
	value := c.GetString(BranchIDKey)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
