package database

import (
	"database/sql"
	"fmt"
)

// schema is embedded so the server, the loader CLI and tests all migrate
// without depending on a file in the working directory.
const schema = `
CREATE TABLE IF NOT EXISTS catalog (
  position INTEGER PRIMARY KEY,
  identity TEXT,
  payload  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
