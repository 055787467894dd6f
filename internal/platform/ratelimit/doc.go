// Package ratelimit implements fixed-window request limiting backed by Redis
// or, for single-instance deployments and tests, by process memory.
package ratelimit
