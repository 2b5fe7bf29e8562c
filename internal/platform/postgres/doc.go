// Package postgres provides PostgreSQL implementations of the persistence
// interfaces defined in internal/store, together with the embedded goose
// migrations that create the schema they query.
//
// Stores accept a store.DBTX so they work on either a *sql.DB or a *sql.Tx,
// and translate driver errors into store sentinels through MapError.
package postgres
