package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-board-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A disabled page leaves the
// query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !params.Enabled {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders rows by creation time, breaking ties on id.
func NewestFirst(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at DESC").Order(table + ".id DESC")
	}
}

// ContainsFold matches rows where any of columns contains keyword, ignoring
// case. LIKE wildcards in keyword are escaped.
func ContainsFold(keyword string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + utils.EscapeLike(keyword) + "%"

		cond := db.Session(&gorm.Session{NewDB: true})
		for i, col := range columns {
			expr := "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			if i == 0 {
				cond = cond.Where(expr, pattern)
			} else {
				cond = cond.Or(expr, pattern)
			}
		}
		return db.Where(cond)
	}
}
