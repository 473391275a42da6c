package constants

import "time"

// Context keys
const (
	ContextKeyUser      = "current_user"
	ContextKeyRequestID = "request_id"
)

// Auth
const (
	MinPasswordLength = 6
	TokenTTL          = 30 * 24 * time.Hour
	BearerScheme      = "Bearer"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 100000 // keeps (page-1)*limit inside int range
)

// Dashboard
const RecentProjectsLimit = 3

// AI
const MaxAIGeneratedTasks = 20

// Request ID header
const HeaderRequestID = "X-Request-Id"
