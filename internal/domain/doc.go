// Package domain contains the core business entities of the task tracker:
// users with their roles, tasks with their status and priority enumerations,
// and the aggregate statistics computed over them. It is independent of any
// storage engine or delivery mechanism.
package domain
