package repository

import (
	"context"

	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalised email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether a user other than excludeID holds email
	ExistsByEmail(ctx context.Context, email string, excludeID uint64) (bool, error)

	// Update persists changed user fields
	Update(ctx context.Context, user *models.User) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	OwnerID    uint64
	Keyword    string
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// List retrieves an owner's projects, newest first
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project and its tasks in a transaction
	Delete(ctx context.Context, id uint64) error

	// CountByStatus counts an owner's projects grouped by status
	CountByStatus(ctx context.Context, ownerID uint64) (map[models.ProjectStatus]int64, error)

	// Recent returns an owner's most recently created projects
	Recent(ctx context.Context, ownerID uint64, limit int) ([]models.Project, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  uint64
	Keyword    string
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its assignee loaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves a project's tasks, newest first, with assignees loaded
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete hard deletes a task
	Delete(ctx context.Context, id uint64) error
}
