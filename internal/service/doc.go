// Package service contains the application use cases: registration and login,
// token authentication, user administration and task management.
//
// Services depend on the interfaces in internal/store and never on a concrete
// backend. Every operation that acts on behalf of a caller takes a Principal
// and checks it against the capability predicates in authz.go, so the same
// rules apply whichever transport invoked the operation. Expected failures are
// reported as sentinel errors (here, in internal/store and in
// internal/service/auth) that the API layer maps to HTTP status codes.
package service
