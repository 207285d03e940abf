package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext(t *testing.T) {
	t.Run("stores and retrieves logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns no-op logger when absent", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		// must not panic
		logger.Info("no-op")
	})
}

func TestContextEnrichment(t *testing.T) {
	t.Run("request id flows into the logger and context", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

		assert.Equal(t, "req-123", GetRequestID(ctx))
		enriched.Info("hello")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("tenant id flows into the logger and context", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, enriched := WithTenantID(context.Background(), logger, "tenant-1")

		assert.Equal(t, "tenant-1", GetTenantID(ctx))
		enriched.Info("hello")
		assert.Equal(t, "tenant-1", logs.All()[0].ContextMap()["tenant_id"])
	})

	t.Run("branch id flows into the logger and context", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, enriched := WithBranchID(context.Background(), logger, "branch-9")

		assert.Equal(t, "branch-9", GetBranchID(ctx))
		enriched.Info("hello")
		assert.Equal(t, "branch-9", logs.All()[0].ContextMap()["branch_id"])
	})

	t.Run("getters return empty string when unset", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetBranchID(ctx))
	})

	t.Run("enrichment chains", func(t *testing.T) {
		logger, logs := newObservedLogger()
		ctx, enriched := WithRequestID(context.Background(), logger, "req-1")
		ctx, enriched = WithTenantID(ctx, enriched, "tenant-1")

		enriched.Info("hello")
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.Equal(t, "req-1", GetRequestID(ctx))
	})
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span leaves the logger unchanged", func(t *testing.T) {
		logger, logs := newObservedLogger()
		enriched := WithTraceContext(context.Background(), logger)

		enriched.Info("hello")
		fields := logs.All()[0].ContextMap()
		assert.NotContains(t, fields, "trace_id")
		assert.NotContains(t, fields, "span_id")
	})
}
