// Package resource implements the Controller for shared limits on record IO.
//
// The Controller manages three resources:
//
//   - Memory: budget shared by record caches (non-blocking, fail-fast)
//   - IO slots: bound the number of concurrent blob requests
//   - IO throughput: token bucket over bytes read from and written to blob stores
//
// # Memory
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if rc.TryAcquireMemory(int64(len(frame))) {
//	    // cache the frame, ReleaseMemory on eviction
//	}
//
// # IO
//
//	if err := rc.AcquireIOSlot(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseIOSlot()
//
//	if err := rc.AcquireIO(ctx, len(data)); err != nil {
//	    return err
//	}
//
// All methods are safe for concurrent use and handle a nil Controller as
// unlimited.
package resource
