// Package graph stores vertex adjacency as chains of fixed-size edge chunks.
//
// Each vertex header carries two pointers, one per direction, to the newest
// EdgeChunk of that direction. A chunk holds up to its capacity of
// (neighbor, edge) pairs and links to the chunk allocated before it:
//
//	vertex.out -> chunk 3 -> chunk 2 -> chunk 1 -> null
//
// Appending rewrites only the head chunk. When the head is full a new chunk is
// stored first and the vertex header is repointed afterwards through
// serializer.WithGraphPointer, so a crash in between can orphan a chunk but
// never lose edges.
package graph
