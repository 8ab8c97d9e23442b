package database

import "fmt"

// Open connects to a database using the profile's driver selection.
// For SQLite, dsn is the file path; for PostgreSQL and MySQL it is a
// connection string.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(dsn)
	case "mysql":
		return OpenMySQL(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}
