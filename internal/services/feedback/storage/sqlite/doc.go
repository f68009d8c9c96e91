// Package sqlite provides the SQLite-backed feedback store.
//
// It is the default backend: a single file opened in WAL mode with foreign
// keys on and immediate write transactions, so concurrent writers queue on
// the busy timeout instead of failing on lock upgrades.
package sqlite
