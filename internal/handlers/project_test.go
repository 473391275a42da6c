package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-board-api/internal/constants"
	"github.com/yukikurage/project-board-api/internal/dto"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/repository"
	"github.com/yukikurage/project-board-api/internal/services"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	api        *testAPI
	aliceToken string
	bobToken   string
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	suite.api = newTestAPI(suite.T(), nil)
	suite.aliceToken, _ = suite.api.register("Alice", "alice@example.com")
	suite.bobToken, _ = suite.api.register("Bob", "bob@example.com")
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_Defaults() {
	w, env := suite.api.do(http.MethodPost, "/api/projects", suite.aliceToken, map[string]interface{}{
		"title":       "Launch",
		"description": "Ship it",
		"dueDate":     "2030-06-01",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var project dto.ProjectDTO
	decodeData(suite.T(), env, &project)
	suite.Equal("Launch", project.Title)
	suite.Equal(models.ProjectStatusActive, project.Status)
	suite.Require().NotNil(project.DueDate)
	suite.True(project.DueDate.Equal(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)))
	suite.NotZero(project.CreatedBy)
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_Validation() {
	cases := []interface{}{
		map[string]interface{}{"title": "   "},
		map[string]interface{}{"title": "P", "status": "Archived"},
		map[string]interface{}{"title": "P", "dueDate": "tomorrow"},
		"not json",
	}
	for _, body := range cases {
		w, env := suite.api.do(http.MethodPost, "/api/projects", suite.aliceToken, body)
		suite.Equal(http.StatusBadRequest, w.Code, body)
		suite.False(env.Success)
	}
	suite.Equal(int64(0), suite.api.count(&models.Project{}))
}

func (suite *ProjectHandlerTestSuite) TestCreateProject_OwnerComesFromToken() {
	w, env := suite.api.do(http.MethodPost, "/api/projects", suite.aliceToken, map[string]interface{}{
		"title":     "Mine",
		"createdBy": 2,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var project dto.ProjectDTO
	decodeData(suite.T(), env, &project)
	suite.Equal(uint64(1), project.CreatedBy)
}

func (suite *ProjectHandlerTestSuite) TestListProjects_KeywordCaseInsensitive() {
	suite.api.createProject(suite.aliceToken, "Alpha Launch")
	suite.api.createProject(suite.aliceToken, "Beta Rollout")
	suite.api.createProject(suite.bobToken, "Bob's launch")

	w, env := suite.api.do(http.MethodGet, "/api/projects?keyword=launch", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var projects []dto.ProjectDTO
	decodeData(suite.T(), env, &projects)
	suite.Require().Len(projects, 1)
	suite.Equal("Alpha Launch", projects[0].Title)
	suite.Require().NotNil(env.Count)
	suite.Equal(1, *env.Count)
}

func (suite *ProjectHandlerTestSuite) TestListProjects_NewestFirstAndEmpty() {
	w, env := suite.api.do(http.MethodGet, "/api/projects", suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(env.Data))
	suite.Equal(0, *env.Count)

	suite.api.createProject(suite.aliceToken, "Old")
	suite.api.createProject(suite.aliceToken, "New")

	_, env = suite.api.do(http.MethodGet, "/api/projects", suite.aliceToken, nil)
	var projects []dto.ProjectDTO
	decodeData(suite.T(), env, &projects)
	suite.Require().Len(projects, 2)
	suite.Equal("New", projects[0].Title)
	suite.Equal("Old", projects[1].Title)

	_, env = suite.api.do(http.MethodGet, "/api/projects?page=2&limit=1", suite.aliceToken, nil)
	decodeData(suite.T(), env, &projects)
	suite.Require().Len(projects, 1)
	suite.Equal("Old", projects[0].Title)
}

func (suite *ProjectHandlerTestSuite) TestGetProject() {
	project := suite.api.createProject(suite.aliceToken, "Mine")

	w, env := suite.api.do(http.MethodGet, projectPath(project.ID), suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var got dto.ProjectDTO
	decodeData(suite.T(), env, &got)
	suite.Equal(project.ID, got.ID)

	w, _ = suite.api.do(http.MethodGet, projectPath(project.ID), suite.bobToken, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.api.do(http.MethodGet, projectPath(999), suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.api.do(http.MethodGet, "/api/projects/abc", suite.aliceToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProject_PartialPatch() {
	w, env := suite.api.do(http.MethodPost, "/api/projects", suite.aliceToken, map[string]interface{}{
		"title":       "Original",
		"description": "keep me",
		"dueDate":     "2030-01-01",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var project dto.ProjectDTO
	decodeData(suite.T(), env, &project)

	w, env = suite.api.do(http.MethodPut, projectPath(project.ID), suite.aliceToken, map[string]interface{}{
		"title":  "Renamed",
		"status": "Completed",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated dto.ProjectDTO
	decodeData(suite.T(), env, &updated)
	suite.Equal("Renamed", updated.Title)
	suite.Equal("keep me", updated.Description)
	suite.Equal(models.ProjectStatusCompleted, updated.Status)
	suite.NotNil(updated.DueDate)

	w, env = suite.api.do(http.MethodPut, projectPath(project.ID), suite.aliceToken, map[string]interface{}{"dueDate": nil})
	suite.Require().Equal(http.StatusOK, w.Code)
	decodeData(suite.T(), env, &updated)
	suite.Nil(updated.DueDate)

	w, _ = suite.api.do(http.MethodPut, projectPath(project.ID), suite.aliceToken, map[string]interface{}{"status": "Paused"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProject_NonOwnerIsForbidden() {
	project := suite.api.createProject(suite.aliceToken, "Mine")

	w, env := suite.api.do(http.MethodPut, projectPath(project.ID), suite.bobToken, map[string]interface{}{"title": "Stolen"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(env.Success)

	var stored models.Project
	suite.Require().NoError(suite.api.db.First(&stored, project.ID).Error)
	suite.Equal("Mine", stored.Title)
}

func (suite *ProjectHandlerTestSuite) TestDeleteProject_NonOwnerIsForbidden() {
	project := suite.api.createProject(suite.aliceToken, "Mine")

	w, _ := suite.api.do(http.MethodDelete, projectPath(project.ID), suite.bobToken, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.api.do(http.MethodGet, projectPath(project.ID), suite.aliceToken, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestDeleteProject_CascadesTasks() {
	project := suite.api.createProject(suite.aliceToken, "Doomed")
	task := suite.api.createTask(suite.aliceToken, project.ID, "Goes too")

	w, env := suite.api.do(http.MethodDelete, projectPath(project.ID), suite.aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("Project deleted successfully", env.Message)

	w, _ = suite.api.do(http.MethodGet, taskPath(task.ID), suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(int64(0), suite.api.count(&models.Task{}))

	w, _ = suite.api.do(http.MethodDelete, projectPath(project.ID), suite.aliceToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}

// TestProjectHandler_StoreFailureExposesMessage runs the handler over a
// mocked connection whose query fails.
func TestProjectHandler_StoreFailureExposesMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `projects`").WillReturnError(errors.New("connection reset by peer"))

	handler := NewProjectHandler(services.NewProjectService(repository.NewProjectRepository(db)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	c.Set(constants.ContextKeyUser, &models.User{ID: 1})

	handler.ListProjects(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "failed to list projects: connection reset by peer", env.Message)
	require.Len(t, c.Errors, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
