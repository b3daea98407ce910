// Package store defines the credential store used by the session refresh
// coordinator in the sibling `transport` package.
//
// It ships with an in-memory implementation for CLI and test scenarios and an
// afs-backed FileStore that survives process restarts.
package store
