// Package user defines the feedback service's account model: the User record,
// the closed Role set, credential normalization, and password hashing.
package user
