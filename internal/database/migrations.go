package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/project-board-api/internal/models"
	"gorm.io/gorm"
)

// compositeIndexes covers the list queries: owner listing ordered by creation
// time and per-project task listing ordered the same way.
var compositeIndexes = []struct {
	model   interface{}
	name    string
	columns string
}{
	{&models.Project{}, "idx_projects_owner_created", "created_by, created_at"},
	{&models.Task{}, "idx_tasks_project_created", "project_id, created_at"},
}

// AddIndexes creates indexes that struct tags cannot express. Existing
// indexes are skipped so the call is safe on every start.
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", stmt.Schema.Table).Msg("Created index")
	}

	return nil
}
