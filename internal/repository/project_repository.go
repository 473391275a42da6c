package repository

import (
	"context"

	"github.com/yukikurage/project-board-api/internal/database"
	"github.com/yukikurage/project-board-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves an owner's projects matching the filter
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	projects := []models.Project{}

	err := r.db.WithContext(ctx).
		Where("projects.created_by = ?", filter.OwnerID).
		Scopes(
			database.ContainsFold(filter.Keyword, "projects.title"),
			database.NewestFirst("projects"),
			database.Paginate(filter.Pagination),
		).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// Delete deletes a project and all of its tasks in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

// CountByStatus counts an owner's projects per status in one query
func (r *GormProjectRepository) CountByStatus(ctx context.Context, ownerID uint64) (map[models.ProjectStatus]int64, error) {
	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("status, COUNT(*) AS count").
		Where("created_by = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Recent returns the owner's newest projects
func (r *GormProjectRepository) Recent(ctx context.Context, ownerID uint64, limit int) ([]models.Project, error) {
	projects := []models.Project{}

	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Scopes(database.NewestFirst("projects")).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	return projects, nil
}
