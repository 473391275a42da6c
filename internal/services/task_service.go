package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-board-api/internal/constants"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/repository"
	"github.com/yukikurage/project-board-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskTitleEmpty         = errors.New("task title is required")
	ErrProjectIDRequired      = errors.New("projectId is required")
	ErrInvalidTaskStatus      = errors.New("status must be To Do, In Progress or Done")
	ErrInvalidTaskPriority    = errors.New("priority must be Low, Medium or High")
	ErrInvalidTaskAssignee    = errors.New("assigned user does not exist")
	ErrGenerateTextEmpty      = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic. Every operation authorizes
// against the owner of the task's project at request time.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	generator   TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case GenerateTasks reports ErrAIServiceNotConfigured.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		generator:   generator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ActorID    uint64
	ProjectID  uint64
	Keyword    string
	Pagination utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	ProjectID   uint64
	AssignedTo  uint64
	CreatorID   uint64
}

// UpdateTaskInput enumerates the fields an update may change. Nil fields
// are left alone; ClearDueDate removes the due date.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	AssignedTo   *uint64
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	ProjectID uint64
	ActorID   uint64
}

// ListTasks returns a project's tasks, newest first, if the actor owns it
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}
	if _, err := loadOwnedProject(ctx, s.projectRepo, input.ProjectID, input.ActorID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ProjectID:  input.ProjectID,
		Keyword:    strings.TrimSpace(input.Keyword),
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task whose project the actor owns
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	return s.ensureTaskOwner(ctx, taskID, actorID)
}

// CreateTask creates a task in a project the creator owns
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}
	if _, err := loadOwnedProject(ctx, s.projectRepo, input.ProjectID, input.CreatorID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleEmpty
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}
	if input.AssignedTo != 0 && input.AssignedTo != input.CreatorID {
		if err := s.ensureUserExists(ctx, input.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := models.NewTask(input.ProjectID, input.CreatorID, input.AssignedTo, input.Title, input.Description, input.Status, input.Priority, input.DueDate)
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// UpdateTask validates the patch and applies it. A board move is an update
// carrying only Status.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.ensureTaskOwner(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTaskTitleEmpty
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}
	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		if err := s.ensureUserExists(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// DeleteTask hard deletes a task whose project the actor owns
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	if _, err := s.ensureTaskOwner(ctx, taskID, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasks uses AI to suggest tasks for a project the actor owns.
// Suggestions are returned, not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrGenerateTextEmpty
	}
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}
	if _, err := loadOwnedProject(ctx, s.projectRepo, input.ProjectID, input.ActorID); err != nil {
		return nil, err
	}

	aiTasks, err := s.generator.GenerateTasks(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// ensureTaskOwner loads the task, then its project, and verifies the actor
// owns that project.
func (s *TaskService) ensureTaskOwner(ctx context.Context, taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := loadOwnedProject(ctx, s.projectRepo, task.ProjectID, actorID); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) ensureUserExists(ctx context.Context, userID uint64) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidTaskAssignee
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	return nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}
