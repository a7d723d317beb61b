// Package database provides the SQLite store behind the generation history.
//
// The store keeps one row per dashboard generation so the HTTP API can list
// past runs and serve their output again. It is optional: nothing in the
// generator depends on it.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive. Each version has an .up.sql file and may have a
// .down.sql file for Rollback.
package database
