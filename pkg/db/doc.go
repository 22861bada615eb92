// Package db connects to PostgreSQL with pgx and applies migrations.
//
// The site's "database" section decodes into Config. Connect retries until
// the server answers a ping, Migrate runs goose migrations from an fs.FS
// and MigrateJobs installs the river job queue schema:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// WithTx wraps a function in a transaction.
package db
