// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the catalog and authentication services, which depend only on the
// contracts here and on the sentinel errors in errors.go.
package store
