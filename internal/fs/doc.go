// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: the operations the local blob store performs
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that fails opens, writes, syncs or renames by path pattern
//
// Tests use [FaultyFS] to simulate a crash between two dependent record writes,
// for example an edge chunk write followed by the vertex header rewrite:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("b9/", fs.Fault{FailRename: true})
//	store := blobstore.NewLocalStoreFS(dir, ffs)
package fs
