// Package migration applies versioned SQL schema changes to the scheduler's
// SQLite database.
//
// Migration files are read from an fs.FS, usually an embedded directory, and
// must be named {version}_{description}.sql (for example
// "001_initial_schema.sql"). Each file runs in its own transaction and is
// recorded in the schema_migrations table so it is applied at most once.
//
//	manager := migration.NewMigrationManager(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), files, ".", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
