package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-board-api/internal/auth"
	"github.com/yukikurage/project-board-api/internal/constants"
	"github.com/yukikurage/project-board-api/internal/database"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authTestEnv struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	router *gin.Engine
	user   *models.User
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&models.User{}))

	user := models.NewUser("Alice", "alice@example.com", "hash", "")
	require.NoError(t, db.Create(user).Error)

	tokens := auth.NewTokenManager("secret", time.Hour)

	r := gin.New()
	r.GET("/private", RequireAuth(tokens, repository.NewUserRepository(db)), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": current.ID, "email": current.Email})
	})

	return authTestEnv{db: db, tokens: tokens, router: r, user: user}
}

func (env authTestEnv) get(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func responseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Message
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := setupAuthTestEnv(t)
	token, err := env.tokens.Issue(env.user.ID)
	require.NoError(t, err)

	w := env.get("Bearer " + token)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(env.user.ID), body["id"])
	assert.Equal(t, "alice@example.com", body["email"])
}

func TestRequireAuth_MissingToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		w := env.get(header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, "Not authorized, no token", responseMessage(t, w))
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	expired, err := auth.NewTokenManager("secret", -time.Minute).Issue(env.user.ID)
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("other-secret", time.Hour).Issue(env.user.ID)
	require.NoError(t, err)

	for _, token := range []string{"garbage", expired, foreign} {
		w := env.get("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authorized, token invalid", responseMessage(t, w))
	}
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	env := setupAuthTestEnv(t)
	token, err := env.tokens.Issue(env.user.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(&models.User{}, env.user.ID).Error)

	w := env.get("Bearer " + token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User no longer exists", responseMessage(t, w))
}

func TestRequireAuth_SchemeIsCaseInsensitive(t *testing.T) {
	env := setupAuthTestEnv(t)
	token, err := env.tokens.Issue(env.user.ID)
	require.NoError(t, err)

	w := env.get("bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCurrentUser_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUser, "not a user")
	_, ok = CurrentUser(c)
	assert.False(t, ok)
}

func TestRequestLogger_AssignsAndLogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var seenID string
	var ctxLoggerWorks bool
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) {
		seenID = RequestID(c)
		ctxLoggerWorks = zerolog.Ctx(c.Request.Context()).GetLevel() != zerolog.Disabled
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get(constants.HeaderRequestID))
	assert.True(t, ctxLoggerWorks)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, seenID, entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
	assert.Equal(t, "info", entry["level"])
}

func TestRequestLogger_ReusesIncomingIDAndLogsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(context.DeadlineExceeded)
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc-123", entry["request_id"])
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry["error"], "context deadline exceeded")
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
