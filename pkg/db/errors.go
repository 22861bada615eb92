package db

import "errors"

// Connection errors.
var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse the database section")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
)

// Migration errors, see Migrate and MigrateJobs.
var (
	ErrSetDialect      = errors.New("db: failed to set migration dialect")
	ErrApplyMigrations = errors.New("db: failed to apply site migrations")
	ErrJobMigrations   = errors.New("db: failed to apply job queue migrations")
)
