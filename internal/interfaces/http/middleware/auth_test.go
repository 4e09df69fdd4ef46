// internal/interfaces/http/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/gooddrive/autoparts-backend/internal/pkg/auth"
)

func newAuthRouter(t *testing.T, jwtManager *pkgauth.JWTManager, superuserOnly bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/admin", Auth(jwtManager))
	if superuserOnly {
		group.Use(SuperuserOnly())
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserIDFromContext(c)})
	})
	return router
}

func doGet(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := pkgauth.NewJWTManager("test-secret", time.Hour)
	router := newAuthRouter(t, jwtManager, false)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(router, "").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(router, "not-a-token").Code)
	})

	t.Run("staff token passes", func(t *testing.T) {
		token, err := jwtManager.GenerateToken(7, "manager", "manager@gooddrive.ru", true, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, doGet(router, token).Code)
	})

	t.Run("non-staff token refused", func(t *testing.T) {
		token, err := jwtManager.GenerateToken(8, "visitor", "visitor@example.com", false, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, doGet(router, token).Code)
	})
}

func TestSuperuserOnly(t *testing.T) {
	jwtManager := pkgauth.NewJWTManager("test-secret", time.Hour)
	router := newAuthRouter(t, jwtManager, true)

	t.Run("superuser passes", func(t *testing.T) {
		token, err := jwtManager.GenerateToken(1, "root", "root@gooddrive.ru", true, true)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, doGet(router, token).Code)
	})

	t.Run("staff without superuser refused", func(t *testing.T) {
		token, err := jwtManager.GenerateToken(7, "manager", "manager@gooddrive.ru", true, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, doGet(router, token).Code)
	})

	t.Run("aborts without auth context", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		SuperuserOnly()(c)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
