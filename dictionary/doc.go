// Package dictionary maps property names to compact int32 ids.
//
// Every record stores property ids instead of names. A Dictionary is owned by
// one database handle and shared by all its readers and writers:
//
//	d := dictionary.New()
//	id, _ := d.ID("name", true)   // mint on first use
//	name, err := d.Name(id)       // reverse lookup
//	_, ok := d.ID("missing", false)
//
// Ids are append-only. UpdateName renames an entry in place, which makes a
// property rename free for already encoded records.
//
// Snapshots are CRC32C-protected and stored zstd-compressed in a blob store
// via Save and Load.
package dictionary
