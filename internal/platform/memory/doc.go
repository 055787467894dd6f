// Package memory provides in-process implementations of the store interfaces.
// Users and tasks share one DB so cascading deletes and uniqueness checks
// happen under a single lock. Used by the memory database driver and by tests.
package memory
