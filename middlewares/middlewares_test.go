package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(jwtSecret string) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(jwtSecret), func(c *gin.Context) {
		id, _ := TenantID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	token, err := utils.GenerateToken("tenant-7", secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(secret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-7", w.Body.String())
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	token, err := utils.GenerateToken("tenant-8", secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
	w := httptest.NewRecorder()
	protectedRouter(secret).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant-8", w.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		protectedRouter(secret).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		protectedRouter(secret).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("secret not configured", func(t *testing.T) {
		w := httptest.NewRecorder()
		protectedRouter("").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMemorySubmitLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewMemorySubmitLimiter(2, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Hour, retry)

	ok, _, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "limits are per tenant")

	now = now.Add(time.Hour)
	ok, _, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "window resets")
}

func TestSubmitRateLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/submit",
		func(c *gin.Context) { c.Set(TenantIDKey, "tenant-1"); c.Next() },
		SubmitRateLimiter(NewMemorySubmitLimiter(1, time.Hour)),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")
}

func TestSubmitRateLimiter_RequiresTenant(t *testing.T) {
	r := gin.New()
	r.POST("/submit", SubmitRateLimiter(NewMemorySubmitLimiter(1, time.Hour)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitRateLimiter_FailedSubmissionsAreRefunded(t *testing.T) {
	statuses := []int{http.StatusBadRequest, http.StatusBadGateway, http.StatusCreated, http.StatusCreated}
	calls := 0
	r := gin.New()
	r.POST("/submit",
		func(c *gin.Context) { c.Set(TenantIDKey, "tenant-1"); c.Next() },
		SubmitRateLimiter(NewMemorySubmitLimiter(1, time.Hour)),
		func(c *gin.Context) {
			c.Status(statuses[calls])
			calls++
		},
	)

	for _, want := range []int{http.StatusBadRequest, http.StatusBadGateway, http.StatusCreated, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
		assert.Equal(t, want, w.Code)
	}
	assert.Equal(t, 3, calls)
}

func TestMemorySubmitLimiter_RefundStaysInWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewMemorySubmitLimiter(1, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Refund(ctx, "unknown"))
	ok, _, _ := l.Allow(ctx, "unknown")
	assert.True(t, ok)
	ok, _, _ = l.Allow(ctx, "unknown")
	assert.False(t, ok, "refund without an attempt grants nothing")

	ok, _, _ = l.Allow(ctx, "a")
	require.True(t, ok)
	require.NoError(t, l.Refund(ctx, "a"))
	require.NoError(t, l.Refund(ctx, "a"))
	ok, _, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _, _ = l.Allow(ctx, "a")
	assert.False(t, ok, "count never drops below zero")
}
