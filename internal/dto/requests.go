package dto

import "github.com/yukikurage/project-board-api/internal/models"

// Request bodies shared by the HTTP handlers and the Go client.

type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CreateProjectRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Status      models.ProjectStatus `json:"status,omitempty"`
	DueDate     DateField            `json:"dueDate,omitzero"`
}

// UpdateProjectRequest lists every field a project update may change. Nil
// pointers and an unset DueDate leave the stored value untouched.
type UpdateProjectRequest struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.ProjectStatus `json:"status,omitempty"`
	DueDate     DateField             `json:"dueDate,omitzero"`
}

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.TaskStatus   `json:"status,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	DueDate     DateField           `json:"dueDate,omitzero"`
	ProjectID   uint64              `json:"projectId"`
	AssignedTo  uint64              `json:"assignedTo,omitempty"`
}

// UpdateTaskRequest lists every field a task update may change. The parent
// project is fixed at creation and cannot be patched.
type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *models.TaskStatus   `json:"status,omitempty"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	DueDate     DateField            `json:"dueDate,omitzero"`
	AssignedTo  *uint64              `json:"assignedTo,omitempty"`
}

type GenerateTasksRequest struct {
	Text      string `json:"text"`
	ProjectID uint64 `json:"projectId"`
}
