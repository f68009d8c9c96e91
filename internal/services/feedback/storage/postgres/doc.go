// Package postgres provides the PostgreSQL-backed feedback store over a
// pgx connection pool.
package postgres
