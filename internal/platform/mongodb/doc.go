// Package mongodb implements the store interfaces on MongoDB. IDs are stored
// as UUID strings in _id; uniqueness of usernames and emails is enforced by
// unique indexes created in EnsureIndexes.
package mongodb
