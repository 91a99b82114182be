package sqlite

import "database/sql"

// schema runs on startup to ensure the tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    frost_res INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS enchants (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    frost_res INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_frost_res ON items(frost_res);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
