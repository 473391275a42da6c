package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-board-api/internal/constants"
)

// PaginationParams holds the pagination parameters. Lists are unpaginated
// unless the caller passes page or limit.
type PaginationParams struct {
	Enabled bool
	Page    int
	Limit   int
	Offset  int
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Enabled: true,
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// EscapeLike lower-cases s and escapes LIKE wildcards using '!' as the escape
// character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(strings.ToLower(s))
}
