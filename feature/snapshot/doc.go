// Package snapshot exports and imports whole catalogs through object storage.
//
// A snapshot is one JSON document holding the catalog header, the options
// of its current bucketing and every bucket with its items in order, items
// flagged for removal included. Objects are written under Prefix as
// <name>.json in the configured storage bucket, which is created on first
// export.
//
// Importing adds the decoded items under the current bucketing and then
// re-applies the snapshot's bucketing, so the catalog ends up keyed the way
// it was exported. Items that fail to decode are skipped with a warning.
//
// # HTTP Endpoints
//
//   - GET /snapshots : Lists stored snapshots.
//   - POST /snapshots?name= : Exports the catalog.
//   - POST /snapshots/:name/import?replace=true : Imports a snapshot.
//   - DELETE /snapshots/:name : Removes a snapshot.
package snapshot
