// Package testdb provisions real backing services for integration tests.
//
// Each helper first looks for an externally managed service through an
// environment variable, which is how CI points tests at service containers,
// and otherwise starts a throwaway container with testcontainers-go. The
// returned handles are closed and the containers removed via t.Cleanup.
//
// Only _test.go files should import this package.
package testdb
