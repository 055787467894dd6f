// Package store defines the persistence contracts for users and tasks.
// Backends live under internal/platform (postgres, mongo, memory) and map
// their driver errors onto the sentinel errors declared here, so services
// stay independent of the storage engine.
package store
