// Package catalog exposes the catalog engine over HTTP.
//
// Writers read buckets through /catalog/keys and /catalog/keys/{key}, which
// only return items that are not flagged for removal and belong to a named
// machine. Bucketing, merging and maintenance passes are triggered with POST
// requests; they run synchronously and answer once the pass is done.
//
// # Endpoints
//
//   - GET  /catalog/keys
//   - GET  /catalog/keys/{key}
//   - GET  /catalog/stats
//   - GET  /catalog/besthash
//   - POST /catalog/bucket?key=&dedupe=&lower=&norename=
//   - POST /catalog/items
//   - POST /catalog/clear?marked=&empty=
//   - POST /catalog/duplicates?sorted=
package catalog
