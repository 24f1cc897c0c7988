// Package hash provides CRC32-Castagnoli checksums for data integrity.
//
// Record frames, dictionary snapshots and S3 uploads all carry a CRC32C
// computed with this package:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(payload)
//	checksum := h.Sum32()
package hash
