// Package store provides the bucket stores behind a catalog.
//
// Memory keeps everything in process and is what tests and one-shot CLI runs
// use. SQL persists buckets through GORM into two tables, catalog_keys and
// catalog_items, with each item serialized as JSON together with its
// position in the bucket. Both implement catalog.Store and catalog.Appender.
//
// # Usage
//
//	db, _ := database.Connect(cfg.Database)
//	s, err := store.NewSQL(db)
//	if err != nil {
//	    return err
//	}
//	c := catalog.New(s, cfg.Catalog, logger, nil)
package store
