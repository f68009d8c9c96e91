// Package app wires the feedback runtime: it opens the store, bootstraps the
// catalog and admin account, and serves gRPC health until the context ends.
package app
