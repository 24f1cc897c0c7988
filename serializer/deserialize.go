package serializer

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

// DeserializeAll decodes every property of buf in stored order.
func (s *Serializer) DeserializeAll(buf *buffer.Buffer, opts ...CallOption) (value.Properties, error) {
	rid := applyCallOptions(opts).rid
	b, h, err := parseHeader(buf.Bytes(), rid)
	if err != nil {
		return nil, err
	}

	props := make(value.Properties, 0, h.Count)
	unique := uniqueIDs(rid)
	err = scanTable(b, h, rid, func(id int32, off int) (bool, error) {
		if err := unique(id, off); err != nil {
			return false, err
		}
		name, err := s.name(id, rid, off)
		if err != nil {
			return false, err
		}
		v, err := s.decodeAt(b, off, rid, name)
		if err != nil {
			return false, err
		}
		props = append(props, value.Property{Name: name, Value: v})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

// DeserializeFiltered decodes only the named properties. Names that are not
// in the dictionary cannot occur in any record and are skipped without a scan
// of the property table. Otherwise the whole table is validated like
// DeserializeAll, while only wanted values are decoded.
func (s *Serializer) DeserializeFiltered(buf *buffer.Buffer, names []string, opts ...CallOption) (map[string]value.Value, error) {
	rid := applyCallOptions(opts).rid
	b, h, err := parseHeader(buf.Bytes(), rid)
	if err != nil {
		return nil, err
	}

	wanted := roaring.New()
	for _, n := range names {
		if id, ok := s.dict.ID(n, false); ok {
			wanted.Add(uint32(id))
		}
	}
	result := make(map[string]value.Value, wanted.GetCardinality())
	if wanted.IsEmpty() {
		return result, nil
	}

	unique := uniqueIDs(rid)
	err = scanTable(b, h, rid, func(id int32, off int) (bool, error) {
		if err := unique(id, off); err != nil {
			return false, err
		}
		if !wanted.Contains(uint32(id)) {
			return true, nil
		}
		name, err := s.name(id, rid, off)
		if err != nil {
			return false, err
		}
		v, err := s.decodeAt(b, off, rid, name)
		if err != nil {
			return false, err
		}
		result[name] = v
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PropertyNames returns the property names of buf from the header alone.
func (s *Serializer) PropertyNames(buf *buffer.Buffer, opts ...CallOption) ([]string, error) {
	rid := applyCallOptions(opts).rid
	b, h, err := parseHeader(buf.Bytes(), rid)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, h.Count)
	unique := uniqueIDs(rid)
	err = scanTable(b, h, rid, func(id int32, off int) (bool, error) {
		if err := unique(id, off); err != nil {
			return false, err
		}
		name, err := s.name(id, rid, off)
		if err != nil {
			return false, err
		}
		names = append(names, name)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// uniqueIDs returns a check that reports a property id seen twice in one table.
func uniqueIDs(rid model.RID) func(id int32, off int) error {
	seen := roaring.New()
	return func(id int32, off int) error {
		if !seen.CheckedAdd(uint32(id)) {
			return corrupted(rid, off, nil, "duplicate property id %d", id)
		}
		return nil
	}
}

func (s *Serializer) name(id int32, rid model.RID, off int) (string, error) {
	name, err := s.dict.Name(id)
	if err != nil {
		return "", corrupted(rid, off, err, "unknown property id %d", id)
	}
	return name, nil
}

// decodeAt decodes the tagged value at off and restores the cursor.
func (s *Serializer) decodeAt(b *buffer.Buffer, off int, rid model.RID, name string) (value.Value, error) {
	saved := b.Position()
	if err := b.SetPosition(off); err != nil {
		return value.Value{}, corrupted(rid, off, err, "seeking property %q", name)
	}

	tag, err := b.GetByte()
	if err != nil {
		return value.Value{}, corrupted(rid, off, err, "reading tag of %q", name)
	}
	v, err := DecodePayload(b, value.Kind(tag))
	if err != nil {
		var uk *unknownKindError
		if !errors.As(err, &uk) || s.strict {
			return value.Value{}, corrupted(rid, off, err, "decoding property %q", name)
		}
		s.logger.Warn("unknown value tag, returning null",
			"rid", rid.String(), "property", name, "tag", fmt.Sprint(uint8(uk.kind)))
		v = value.Null()
	}

	if err := b.SetPosition(saved); err != nil {
		return value.Value{}, corrupted(rid, saved, err, "restoring header cursor")
	}
	return v, nil
}
