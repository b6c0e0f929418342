package checks

import (
	"fmt"
	"slices"

	"dat-catalog/core/database"
	"dat-catalog/core/store"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a store schema check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckStoreSchema verifies that the bucket store tables carry every column
// the SQL store reads and writes.
func CheckStoreSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	tables := make([]string, 0, len(store.Schema))
	for t := range store.Schema {
		tables = append(tables, t)
	}
	slices.Sort(tables)

	for _, table := range tables {
		missing, err := database.MissingColumns(db, table, store.Schema[table]...)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		if len(missing) > 0 {
			tbl.MissingColumns = missing
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}
