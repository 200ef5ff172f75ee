package catalog_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upMediaCatalog, downMediaCatalog)
}

func upMediaCatalog(tx *sql.Tx) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if Dialect() == "postgres" {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	createStatements := []string{
		`CREATE TABLE IF NOT EXISTS media (
			` + idColumn + `,
			collection TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			size_bytes BIGINT NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL DEFAULT '',
			data_path TEXT NOT NULL DEFAULT '',
			thumbnail_path TEXT NOT NULL DEFAULT '',
			date_added BIGINT NOT NULL DEFAULT 0,
			UNIQUE(collection, data_path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_media_collection_mime ON media(collection, mime_type);`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downMediaCatalog(tx *sql.Tx) error {
	dropStatements := []string{
		"DROP INDEX IF EXISTS idx_media_collection_mime;",
		"DROP TABLE IF EXISTS media;",
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
