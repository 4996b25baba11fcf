// Package catalog stores video records in a SQLite database and serves
// sorted, paginated, and filtered views over them.
//
// Records are keyed by absolute file path; writing a record for a path
// that already exists replaces it entirely. The store is safe for
// concurrent use: writes take an exclusive lock while reads share one,
// and the database runs in WAL mode so indexing and browsing can
// overlap.
package catalog
