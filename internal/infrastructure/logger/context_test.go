package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_RoundTrip(t *testing.T) {
	log := zap.NewNop()

	ctx := WithContext(context.Background(), log)

	assert.Equal(t, log, FromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	t.Run("missing logger yields no-op", func(t *testing.T) {
		log := FromContext(context.Background())

		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("orphan") })
	})

	t.Run("wrong value type yields no-op", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")

		log := FromContext(ctx)
		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("orphan") })
	})
}

func TestContextEnrichment(t *testing.T) {
	log := zap.NewNop()
	ctx := context.Background()

	ctx, log = WithRequestID(ctx, log, "req-scan-1")
	ctx, log = WithWorkspaceID(ctx, log, "ws-acme")
	ctx, log = WithUserID(ctx, log, "user-ops")

	assert.Equal(t, "req-scan-1", GetRequestID(ctx))
	assert.Equal(t, "ws-acme", GetWorkspaceID(ctx))
	assert.Equal(t, "user-ops", GetUserID(ctx))
	assert.NotNil(t, log)
}

func TestContextEnrichment_Overrides(t *testing.T) {
	log := zap.NewNop()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, log, "first")
	ctx, _ = WithRequestID(ctx, log, "second")

	assert.Equal(t, "second", GetRequestID(ctx))
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetWorkspaceID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestContextKeys_Distinct(t *testing.T) {
	keys := []contextKey{LoggerKey, RequestIDKey, WorkspaceIDKey, UserIDKey}
	seen := make(map[contextKey]bool)
	for _, key := range keys {
		assert.False(t, seen[key], "duplicate context key %q", key)
		seen[key] = true
	}
}

func TestL_InjectsContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, log, "req-fwd-7")
	ctx, _ = WithWorkspaceID(ctx, log, "ws-19")
	ctx, _ = WithUserID(ctx, log, "user-5")
	ctx = WithContext(ctx, log)

	L(ctx).Info("forwarding request dispatched", zap.String("carrier", "USPS"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logFields(logs[0])
	assert.Equal(t, "req-fwd-7", fields["request_id"].String)
	assert.Equal(t, "ws-19", fields["workspace_id"].String)
	assert.Equal(t, "user-5", fields["user_id"].String)
	assert.Equal(t, "USPS", fields["carrier"].String)
}

func TestL_SkipsAbsentContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	cl := WithLogger(context.Background(), zap.New(core))
	cl.Info("bare entry")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logFields(logs[0])
	assert.NotContains(t, fields, "request_id")
	assert.NotContains(t, fields, "workspace_id")
	assert.NotContains(t, fields, "user_id")
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	log := zap.NewNop()

	cl := WithLogger(context.Background(), log)

	require.NotNil(t, cl)
	assert.Equal(t, log, cl.logger)
}

func TestContextLogger_With(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	cl := WithLogger(context.Background(), zap.New(core)).
		With(zap.String("component", "outbox")).
		With(zap.String("table", "event_outbox"))

	cl.Info("entry published")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logFields(logs[0])
	assert.Equal(t, "outbox", fields["component"].String)
	assert.Equal(t, "event_outbox", fields["table"].String)
}

func TestContextLogger_AllLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("debug")
		cl.Info("info")
		cl.Warn("warn")
		cl.Error("error")
	})
}

func TestContextLogger_NilLoggerFallsBack(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background(), logger: nil}

	assert.NotPanics(t, func() {
		cl.Info("survives nil logger")
	})
}

func TestContextLogger_ZapAndSugar(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-11")
	cl := WithLogger(ctx, log)

	cl.Zap().Info("via zap")
	cl.Sugar().Infow("via sugar")

	logs := recorded.All()
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "req-11", logFields(entry)["request_id"].String)
	}
}
