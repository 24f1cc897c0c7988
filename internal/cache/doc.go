// Package cache provides in-memory caches for encoded record bytes.
//
// Caches are keyed by model.RID and bounded by bytes. When a
// resource.Controller is supplied, cached bytes also count against its
// shared memory limit.
package cache
