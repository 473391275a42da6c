package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-board-api/internal/config"
	"github.com/yukikurage/project-board-api/internal/database"
	"github.com/yukikurage/project-board-api/internal/dto"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

func newTestConfig() *config.Config {
	return &config.Config{
		Port:        "5000",
		Environment: "test",
		Version:     "test",
		JWTSecret:   "test-secret",
		DBDriver:    "sqlite",
		DatabaseURL: ":memory:",
		LogLevel:    "error",
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.Task{}))
	return db
}

// testAPI drives the full router the way an HTTP client would.
type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestAPI(t *testing.T, generator services.TaskGenerator) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	router, err := NewRouter(RouterDeps{
		Config:    newTestConfig(),
		DB:        db,
		Logger:    zerolog.Nop(),
		Generator: generator,
	})
	require.NoError(t, err)

	return &testAPI{t: t, db: db, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// register creates an account and returns its token and user.
func (a *testAPI) register(name, email string) (string, dto.UserDTO) {
	a.t.Helper()

	w, env := a.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret1",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)

	var resp dto.AuthResponse
	decodeData(a.t, env, &resp)
	return resp.Token, resp.User
}

func (a *testAPI) createProject(token, title string) dto.ProjectDTO {
	a.t.Helper()

	w, env := a.do(http.MethodPost, "/api/projects", token, dto.CreateProjectRequest{Title: title})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)

	var project dto.ProjectDTO
	decodeData(a.t, env, &project)
	return project
}

func (a *testAPI) createTask(token string, projectID uint64, title string) dto.TaskDTO {
	a.t.Helper()

	w, env := a.do(http.MethodPost, "/api/tasks", token, dto.CreateTaskRequest{Title: title, ProjectID: projectID})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)

	var task dto.TaskDTO
	decodeData(a.t, env, &task)
	return task
}

func (a *testAPI) count(model interface{}) int64 {
	a.t.Helper()
	var n int64
	require.NoError(a.t, a.db.Model(model).Count(&n).Error)
	return n
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.True(t, env.Success, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func projectPath(id uint64) string {
	return fmt.Sprintf("/api/projects/%d", id)
}

func taskPath(id uint64) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}
