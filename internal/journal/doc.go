// Package journal keeps a SQLite history of materialization runs.
//
// Every cut, filter, copy, and publish started from the CLI is recorded with
// its source, destination, counts, and final status so operators can audit
// what was written where. The schema lives in schema.sql; when it changes,
// bump schemaVersion. Older databases are rejected with ErrSchemaMismatch
// rather than migrated.
package journal
