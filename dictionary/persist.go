package dictionary

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/internal/compress"
	"github.com/hupe1980/recgo/internal/hash"
)

// ErrCorrupted is returned when a snapshot fails validation.
var ErrCorrupted = errors.New("dictionary: corrupted snapshot")

const (
	snapshotMagic   uint32 = 0x52444943 // "RDIC"
	snapshotVersion byte   = 1
)

// MarshalBinary encodes all entries.
//
// Layout: magic u32 | version u8 | count uvarint | count x (id uvarint, name string) | crc32c u32.
func (d *Dictionary) MarshalBinary() ([]byte, error) {
	entries := d.Entries()

	buf := buffer.New(16 + len(entries)*12)
	buf.PutInt(int32(snapshotMagic))
	buf.PutByte(snapshotVersion)
	buf.PutUnsignedNumber(uint64(len(entries)))
	for _, e := range entries {
		buf.PutUnsignedNumber(uint64(e.ID))
		buf.PutString(e.Name)
	}
	buf.PutInt(int32(hash.CRC32C(buf.Bytes())))
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the dictionary contents with a snapshot.
// It must not run concurrently with other methods.
func (d *Dictionary) UnmarshalBinary(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("%w: %d bytes", ErrCorrupted, len(data))
	}
	body := data[:len(data)-4]
	crc := buffer.Wrap(data[len(data)-4:])
	want, _ := crc.GetInt()
	if !hash.VerifyCRC32C(body, uint32(want)) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupted)
	}

	buf := buffer.Wrap(body)
	magic, _ := buf.GetInt()
	if uint32(magic) != snapshotMagic {
		return fmt.Errorf("%w: bad magic %#x", ErrCorrupted, uint32(magic))
	}
	version, _ := buf.GetByte()
	if version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupted, version)
	}

	count, err := buf.GetUnsignedNumber()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if count > uint64(buf.Remaining()) {
		return fmt.Errorf("%w: count %d exceeds snapshot size", ErrCorrupted, count)
	}

	entries := make([]Entry, 0, count)
	names := make(map[string]struct{}, count)
	ids := make(map[int32]struct{}, count)
	for range count {
		id, err := buf.GetUnsignedNumber()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		if id > math.MaxInt32 {
			return fmt.Errorf("%w: id %d out of range", ErrCorrupted, id)
		}
		name, err := buf.GetString()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrCorrupted, name)
		}
		if _, dup := ids[int32(id)]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrCorrupted, id)
		}
		names[name] = struct{}{}
		ids[int32(id)] = struct{}{}
		entries = append(entries, Entry{ID: int32(id), Name: name})
	}
	if buf.Remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupted, buf.Remaining())
	}

	d.restore(entries)
	return nil
}

// Save writes a zstd-compressed snapshot to store under name.
func (d *Dictionary) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	raw, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	payload, typ, err := compress.Encode(compress.ZSTD, raw)
	if err != nil {
		return err
	}

	out := buffer.New(len(payload) + 8)
	out.PutByte(byte(typ))
	out.PutUnsignedNumber(uint64(len(raw)))
	out.PutRaw(payload)
	return store.Put(ctx, name, out.Bytes())
}

// Load reads a snapshot written by Save. A missing blob yields an error
// satisfying errors.Is(err, blobstore.ErrNotFound).
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*Dictionary, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	buf := buffer.Wrap(data)
	typ, err := buf.GetByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	size, err := buf.GetUnsignedNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if size > math.MaxInt32 {
		return nil, fmt.Errorf("%w: size %d out of range", ErrCorrupted, size)
	}
	payload, _ := buf.GetRaw(buf.Remaining())
	raw, err := compress.Decode(compress.Type(typ), payload, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	d := New()
	if err := d.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return d, nil
}
