package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yukikurage/project-board-api/internal/dto"
	"github.com/yukikurage/project-board-api/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownTask   = errors.New("task is not on this board")
	ErrUnknownStatus = errors.New("status must be To Do, In Progress or Done")
)

// BoardAPI is the part of Client a Board needs.
type BoardAPI interface {
	GetProject(ctx context.Context, id uint64) (*dto.ProjectDTO, error)
	ListTasks(ctx context.Context, projectID uint64, keyword string) ([]dto.TaskDTO, error)
	UpdateTask(ctx context.Context, id uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error)
}

// Column is one board lane.
type Column struct {
	Status models.TaskStatus
	Tasks  []dto.TaskDTO
}

// Board is the local view of one project's tasks.
type Board struct {
	api       BoardAPI
	projectID uint64

	mu      sync.RWMutex
	project *dto.ProjectDTO
	tasks   []dto.TaskDTO
}

func NewBoard(api BoardAPI, projectID uint64) *Board {
	return &Board{api: api, projectID: projectID}
}

// Load fetches the project and its tasks concurrently and replaces the local
// state only when both succeed.
func (b *Board) Load(ctx context.Context) error {
	var (
		project *dto.ProjectDTO
		tasks   []dto.TaskDTO
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := b.api.GetProject(gctx, b.projectID)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		project = p
		return nil
	})
	g.Go(func() error {
		t, err := b.api.ListTasks(gctx, b.projectID, "")
		if err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		tasks = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	b.project = project
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Project returns the loaded project, or nil before the first Load.
func (b *Board) Project() *dto.ProjectDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.project
}

// Tasks returns a copy of the local task list.
func (b *Board) Tasks() []dto.TaskDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]dto.TaskDTO(nil), b.tasks...)
}

// Columns groups the tasks by status in board order. Every status gets a
// column even when it is empty.
func (b *Board) Columns() []Column {
	b.mu.RLock()
	defer b.mu.RUnlock()

	columns := make([]Column, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		columns[i] = Column{Status: status, Tasks: []dto.TaskDTO{}}
		index[status] = i
	}
	for _, task := range b.tasks {
		if i, ok := index[task.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, task)
		}
	}
	return columns
}

// Move puts a task into another column. The local state changes first, then
// the update is sent. If the update fails the board reloads from the server
// and the update error is returned.
func (b *Board) Move(ctx context.Context, taskID uint64, status models.TaskStatus) error {
	if !status.Valid() {
		return ErrUnknownStatus
	}

	b.mu.Lock()
	i := b.indexOf(taskID)
	if i < 0 {
		b.mu.Unlock()
		return ErrUnknownTask
	}
	if b.tasks[i].Status == status {
		b.mu.Unlock()
		return nil
	}
	b.tasks[i].Status = status
	b.mu.Unlock()

	updated, err := b.api.UpdateTask(ctx, taskID, dto.UpdateTaskRequest{Status: &status})
	if err != nil {
		if reloadErr := b.Load(ctx); reloadErr != nil {
			return errors.Join(err, reloadErr)
		}
		return err
	}

	b.mu.Lock()
	if i := b.indexOf(taskID); i >= 0 {
		b.tasks[i] = *updated
	}
	b.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (b *Board) indexOf(taskID uint64) int {
	for i, task := range b.tasks {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}
