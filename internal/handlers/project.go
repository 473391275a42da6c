package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-board-api/internal/dto"
	apierrors "github.com/yukikurage/project-board-api/internal/errors"
	"github.com/yukikurage/project-board-api/internal/services"
	"github.com/yukikurage/project-board-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate.Value,
		OwnerID:     user.ID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	apierrors.Created(c, dto.ToProjectDTO(*project))
}

// ListProjects returns the caller's projects, optionally filtered by keyword
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), services.ListProjectsInput{
		OwnerID:    user.ID,
		Keyword:    c.Query("keyword"),
		Pagination: utils.GetPaginationParams(c),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	apierrors.List(c, dto.ToProjectDTOs(projects), len(projects))
}

// GetProject returns one of the caller's projects
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), projectID, user.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	apierrors.Success(c, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update to one of the caller's projects
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", "project")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, user.ID, services.UpdateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      req.DueDate.Value,
		ClearDueDate: req.DueDate.Set && req.DueDate.Value == nil,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	apierrors.Success(c, dto.ToProjectDTO(*project))
}

// DeleteProject deletes one of the caller's projects and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), projectID, user.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	apierrors.Message(c, "Project deleted successfully")
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectTitleEmpty),
		errors.Is(err, services.ErrInvalidProjectState):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotProjectOwner):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, err)
	}
}
