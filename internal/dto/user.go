package dto

import (
	"time"

	"github.com/yukikurage/project-board-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuthResponse is returned by register, login and profile updates.
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// StatsDTO holds the caller's dashboard aggregates.
type StatsDTO struct {
	TotalProjects     int64        `json:"totalProjects"`
	ActiveProjects    int64        `json:"activeProjects"`
	CompletedProjects int64        `json:"completedProjects"`
	RecentProjects    []ProjectDTO `json:"recentProjects"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
