// Package config provides configuration management for the DAT catalog.
//
// It uses Viper to load configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of every
// section, so each key is registered and can be overridden from the
// environment (CATALOG_WORKERS sets catalog.workers).
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, request limits)
//   - Database: SQLite or MySQL connection backing the SQL bucket store
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Log: Logging level and format
//   - Catalog: worker count, lock shards and bucket store selection
//   - Metrics: Prometheus endpoint
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.Workers)
package config
