// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in internal/store. Connections go through database/sql
// with the pgx stdlib driver; driver errors are mapped to store sentinels so
// callers never see pgconn types. The schema ships as embedded goose
// migrations (see Migrate).
package postgres
