package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-board-api/internal/auth"
	"github.com/yukikurage/project-board-api/internal/constants"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrMissingFields        = errors.New("please provide all required fields")
	ErrMissingCredentials   = errors.New("please provide email and password")
	ErrMissingPasswords     = errors.New("please provide current and new password")
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("role must be admin or member")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
)

// AuthService handles account business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	tokens      *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		tokens:      tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// Session is an authenticated user together with a fresh bearer token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates a new account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role != "" && !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.ensureEmailAvailable(ctx, input.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := models.NewUser(input.Name, input.Email, hash, input.Role)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.newSession(user)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// UpdateProfileInput holds optional profile changes. Blank values keep the
// current field.
type UpdateProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile changes the caller's name or email and issues a new token.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*Session, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := models.NormalizeEmail(input.Email); email != "" && email != user.Email {
		if err := s.ensureEmailAvailable(ctx, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.newSession(user)
}

// UpdatePasswordInput holds a password change request.
type UpdatePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UpdatePassword replaces the caller's password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uint64, input UpdatePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return ErrMissingPasswords
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(user.PasswordHash, input.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return ErrFailedToHashPassword
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// DashboardStats aggregates the caller's projects.
type DashboardStats struct {
	TotalProjects     int64
	ActiveProjects    int64
	CompletedProjects int64
	RecentProjects    []models.Project
}

// Stats computes the caller's dashboard aggregates. Nothing is cached.
func (s *AuthService) Stats(ctx context.Context, userID uint64) (*DashboardStats, error) {
	var (
		counts map[models.ProjectStatus]int64
		recent []models.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.projectRepo.CountByStatus(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.projectRepo.Recent(gctx, userID, constants.RecentProjectsLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent projects: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		ActiveProjects:    counts[models.ProjectStatusActive],
		CompletedProjects: counts[models.ProjectStatusCompleted],
		RecentProjects:    recent,
	}
	for _, n := range counts {
		stats.TotalProjects += n
	}
	return stats, nil
}

func (s *AuthService) ensureEmailAvailable(ctx context.Context, email string, excludeID uint64) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, ErrFailedToIssueToken
	}
	return &Session{User: user, Token: token}, nil
}
