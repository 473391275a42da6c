package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-board-api/internal/auth"
	"github.com/yukikurage/project-board-api/internal/config"
	"github.com/yukikurage/project-board-api/internal/constants"
	apierrors "github.com/yukikurage/project-board-api/internal/errors"
	"github.com/yukikurage/project-board-api/internal/middleware"
	"github.com/yukikurage/project-board-api/internal/repository"
	"github.com/yukikurage/project-board-api/internal/services"
	"gorm.io/gorm"
)

const ServiceName = "project-board-api"

type RouterDeps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger zerolog.Logger
	// Generator backs POST /api/tasks/generate. Nil disables the endpoint
	// with 503.
	Generator services.TaskGenerator
}

// corsConfig allows the configured SPA origins. An empty list or "*" opens
// the API to any origin; bearer tokens do not rely on cookies.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(dep.Logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	sqlDB, err := dep.DB.DB()
	if err != nil {
		return nil, err
	}
	NewHealthHandler(ServiceName, cfg.Version, sqlDB).RegisterRoutes(r)

	tokens := auth.NewTokenManager(cfg.JWTSecret, constants.TokenTTL)

	userRepo := repository.NewUserRepository(dep.DB)
	projectRepo := repository.NewProjectRepository(dep.DB)
	taskRepo := repository.NewTaskRepository(dep.DB)

	authHandler := NewAuthHandler(services.NewAuthService(userRepo, projectRepo, tokens))
	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo))
	taskHandler := NewTaskHandler(services.NewTaskService(taskRepo, projectRepo, userRepo, dep.Generator))

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			public := authGroup.Group("")
			if cfg.RateLimitEnabled {
				public.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
			}
			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)

			private := authGroup.Group("", requireAuth)
			private.GET("/me", authHandler.GetMe)
			private.PUT("/profile", authHandler.UpdateProfile)
			private.PUT("/password", authHandler.UpdatePassword)
			private.GET("/stats", authHandler.GetStats)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r, nil
}
