package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tandem/internal/auth"
	"github.com/mmynk/tandem/internal/models"
)

type ping struct{}

// captureUser is a terminal handler that records the caller identity.
func captureUser(got *string) connect.UnaryFunc {
	return func(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
		*got = GetUserID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
}

func request(header string) *connect.Request[ping] {
	req := connect.NewRequest(&ping{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, _, err := jwtManager.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)

	var got string
	handler := RequireAuth(jwtManager)(captureUser(&got))

	_, err = handler(context.Background(), request("Bearer "+token))
	require.NoError(t, err)
	assert.Equal(t, "u1", got)

	for _, header := range []string{"", "Bearer nope", "Token " + token} {
		_, err := handler(context.Background(), request(header))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err), "header %q", header)
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, _, err := jwtManager.Generate(&models.User{ID: "u2", Email: "u2@example.com"})
	require.NoError(t, err)

	var got string
	handler := OptionalAuth(jwtManager)(captureUser(&got))

	_, err = handler(context.Background(), request("Bearer "+token))
	require.NoError(t, err)
	assert.Equal(t, "u2", got)

	_, err = handler(context.Background(), request(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = handler(context.Background(), request("Bearer garbage"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	})
	fail := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	_, _ = ok(context.Background(), request(""))
	_, _ = ok(context.Background(), request(""))
	_, _ = fail(context.Background(), request(""))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("", "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeInternal, errors.New("boom"))
	handler := LoggingInterceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	})

	_, err := handler(WithUser(context.Background(), "u3", "u3@example.com"), request(""))
	assert.Same(t, want, err)
}
