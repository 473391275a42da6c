package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/repository"
	"github.com/yukikurage/project-board-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrNotProjectOwner     = errors.New("not authorized to access this project")
	ErrProjectTitleEmpty   = errors.New("project title is required")
	ErrInvalidProjectState = errors.New("status must be Active or Completed")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Title       string
	Description string
	Status      models.ProjectStatus
	DueDate     *time.Time
	OwnerID     uint64
}

// UpdateProjectInput enumerates the fields an update may change. Nil fields
// are left alone; ClearDueDate removes the due date.
type UpdateProjectInput struct {
	Title        *string
	Description  *string
	Status       *models.ProjectStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	OwnerID    uint64
	Keyword    string
	Pagination utils.PaginationParams
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrProjectTitleEmpty
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, ErrInvalidProjectState
	}

	project := models.NewProject(input.OwnerID, input.Title, input.Description, input.Status, input.DueDate)
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns the caller's projects, newest first
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) ([]models.Project, error) {
	projects, err := s.projectRepo.List(ctx, repository.ProjectFilter{
		OwnerID:    input.OwnerID,
		Keyword:    strings.TrimSpace(input.Keyword),
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project owned by actorID
func (s *ProjectService) GetProject(ctx context.Context, projectID, actorID uint64) (*models.Project, error) {
	return s.ensureProjectOwner(ctx, projectID, actorID)
}

// UpdateProject validates the patch and applies it to a project owned by actorID
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.ensureProjectOwner(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrProjectTitleEmpty
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidProjectState
	}

	if input.Title != nil {
		project.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.ClearDueDate {
		project.DueDate = nil
	} else if input.DueDate != nil {
		project.DueDate = input.DueDate
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject deletes a project owned by actorID together with its tasks
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uint64) error {
	if _, err := s.ensureProjectOwner(ctx, projectID, actorID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ensureProjectOwner loads a project and verifies actorID owns it
func (s *ProjectService) ensureProjectOwner(ctx context.Context, projectID, actorID uint64) (*models.Project, error) {
	return loadOwnedProject(ctx, s.projectRepo, projectID, actorID)
}

func loadOwnedProject(ctx context.Context, repo repository.ProjectRepository, projectID, actorID uint64) (*models.Project, error) {
	project, err := repo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !project.IsOwnedBy(actorID) {
		return nil, ErrNotProjectOwner
	}

	return project, nil
}
