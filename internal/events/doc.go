// Package events carries domain events from the services to in-process
// consumers such as the audit log and the metrics recorder.
//
// Services emit after a write has been persisted. Handler failures are
// reported to the emitter's caller but never roll back the write.
package events
