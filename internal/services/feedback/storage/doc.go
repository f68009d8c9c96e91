// Package storage defines persistence contracts for the feedback service.
//
// The store is the authority for identifiers and timestamps: callers pass
// the fields they own and receive the persisted record back. Uniqueness and
// referential integrity are enforced by the database and surfaced as the
// sentinel errors declared here, so components never pre-check and race.
package storage
