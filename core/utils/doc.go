// Package utils provides small conversion helpers shared by the HTTP handlers
// and the JSON-lines loader, mostly for query parameters and loosely typed
// input.
package utils
