// Package api translates HTTP requests into service calls and service
// results and errors into JSON responses. Routing and middleware wiring live
// in cmd/server; authentication and tracing middleware live in
// api/middleware.
package api
