// Package client talks to the taskboard API on behalf of an end user.
//
// Client is a typed wrapper over every HTTP route. SessionStore keeps the
// token and profile between runs. Dashboard holds one server page of tasks
// together with the local search and sort applied by Project.
package client
