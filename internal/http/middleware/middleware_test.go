package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) ParseAccess(token string) (uuid.UUID, string, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	tokens := new(mockTokens)
	tokens.On("ParseAccess", "good").Return(userID, "user", nil)
	tokens.On("ParseAccess", "bad").Return(uuid.Nil, "", errors.New("expired"))

	r := gin.New()
	r.GET("/ws", AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet(ContextUserIDKey).(uuid.UUID).String())
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Authorization", "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("query token only for websocket", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/ws?token=good", nil)
		req.Header.Set("Connection", "upgrade")
		req.Header.Set("Upgrade", "websocket")
		w = serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tokens.AssertExpectations(t)
}

func TestRequireAdmin(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	admin, err := entity.NewUser("admin", "admin@example.com", "hash")
	require.NoError(t, err)
	admin.IsAdmin = true
	require.NoError(t, store.Users().Create(ctx, admin))

	regular, err := entity.NewUser("regular", "regular@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, regular))

	newRouter := func(id uuid.UUID) *gin.Engine {
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) {
			c.Set(ContextUserIDKey, id)
			c.Next()
		}, RequireAdmin(store.Users()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	cases := []struct {
		name   string
		userID uuid.UUID
		want   int
	}{
		{"admin passes", admin.ID, http.StatusOK},
		{"regular user forbidden", regular.ID, http.StatusForbidden},
		{"unknown user unauthorized", uuid.New(), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newRouter(tc.userID), httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173/"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/limited", RateLimitMiddleware(store, "test", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/items/"+uuid.NewString(), nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/items/42", nil)).Code)
}

func TestErrorHandlerMasksInternalErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.ErrProblemNotFound) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
