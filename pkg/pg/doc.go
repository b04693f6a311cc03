// Package pg connects to PostgreSQL through a pgx connection pool and applies
// goose migrations from an embedded filesystem.
//
// Connect retries with linear backoff and honours context cancellation
// between attempts. Migrate and Status bridge the pool to database/sql via
// pgx/stdlib, which goose requires. Error helpers classify pgx and
// PostgreSQL errors (no rows, unique violation) so stores can map them to
// their own sentinels.
package pg
