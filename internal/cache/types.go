package cache

import (
	"github.com/hupe1980/recgo/model"
)

// RecordCache caches encoded record bytes by RID.
// Returned slices must be treated as read-only.
type RecordCache interface {
	// Get returns cached record bytes. ok=false if missing.
	Get(rid model.RID) (b []byte, ok bool)
	// Set caches record bytes. The cache retains b; callers must not modify it.
	Set(rid model.RID, b []byte)
	// Invalidate removes a single record.
	Invalidate(rid model.RID)
	// InvalidateBucket removes every record of a bucket.
	InvalidateBucket(bucket int32)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
