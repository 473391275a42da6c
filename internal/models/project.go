package models

import (
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusActive || s == ProjectStatusCompleted
}

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	DueDate     *time.Time    `json:"dueDate"`
	CreatedBy   uint64        `gorm:"not null;index" json:"createdBy"`
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Relations
	Owner User   `gorm:"foreignKey:CreatedBy" json:"-"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"-"`
}

// NewProject builds a project owned by ownerID. An empty status defaults to Active.
func NewProject(ownerID uint64, title, description string, status ProjectStatus, dueDate *time.Time) *Project {
	if status == "" {
		status = ProjectStatusActive
	}
	return &Project{
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CreatedBy:   ownerID,
	}
}

// IsOwnedBy reports whether userID owns the project.
func (p *Project) IsOwnedBy(userID uint64) bool {
	return p.CreatedBy == userID
}
