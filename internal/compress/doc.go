// Package compress wraps LZ4 and ZSTD block compression behind one tag byte.
//
// ZSTD encoders and decoders are pooled. Callers store the returned Type
// and the uncompressed size next to the payload and pass both to Decode.
package compress
