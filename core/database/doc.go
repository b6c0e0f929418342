// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either an embedded SQLite file or a MySQL server
// based on the application's configuration. The SQL bucket store runs on top
// of the returned connection.
//
// # Connect
//
// Connect selects the dialector from Config.Driver. With the sqlite driver and
// no Path, a fresh itemDictionary<uuid>.sqlite file is created in the temp
// directory, so every process starts from an empty catalog.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns back the integrity check that verifies
// the bucket store tables carry the columns the store writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "catalog_items", "bucket", "payload")
package database
