// Package dispatch orchestrates multi-channel notification delivery.
//
// The Dispatcher is the coordinator: it validates a Request against its
// template, resolves the audience, persists a notification Record, and fans
// out rendering plus sending across the resolved recipients in bounded
// concurrent batches. Per-recipient failures are contained as failed send
// results and folded into aggregate statistics; only template and audience
// errors abort a dispatch before any send attempt.
//
// A Record moves through a small lifecycle: pending (or scheduled when a
// future send time is set) to a terminal sent or failed. Scheduled records
// are picked up by ProcessDueScheduled, driven either by the in-process
// Ticker or by an external job runner.
//
// Template and record persistence are collaborator interfaces. The package
// ships in-memory implementations for development and tests, a YAML file
// Catalog for template storage, and Postgres-backed stores for production.
package dispatch
