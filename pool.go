package vectortile

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// ResolveMetadata joins a feature's tag pairs against its layer's key and
// value tables. The result owns its data; nothing aliases the tables.
func ResolveMetadata(keys []string, values []RawValue, tags []uint32) (map[string]Value, error) {
	if len(tags)%2 != 0 {
		return nil, metadataErrorf(ErrOddTagCount, "%d tags", len(tags))
	}
	md := make(map[string]Value, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		ki, vi := tags[i], tags[i+1]
		if int(ki) >= len(keys) {
			return nil, metadataErrorf(ErrIndexOutOfRange, "key index %d, %d keys", ki, len(keys))
		}
		if int(vi) >= len(values) {
			return nil, metadataErrorf(ErrIndexOutOfRange, "value index %d, %d values", vi, len(values))
		}
		key := keys[ki]
		if _, dup := md[key]; dup {
			return nil, metadataErrorf(ErrDuplicateKey, "key %q", key)
		}
		v, err := DecodeValue(values[vi])
		if err != nil {
			return nil, errors.Wrapf(err, "value %d of key %q", vi, key)
		}
		md[key] = v
	}
	return md, nil
}

// tablePool assigns layer-global indices to keys and values in first-seen
// order.
type tablePool struct {
	keys     []string
	values   []RawValue
	keymap   map[string]uint32
	valuemap map[Value]uint32
}

func newTablePool() *tablePool {
	return &tablePool{
		keymap:   make(map[string]uint32),
		valuemap: make(map[Value]uint32),
	}
}

func (p *tablePool) key(k string) uint32 {
	if i, ok := p.keymap[k]; ok {
		return i
	}
	i := uint32(len(p.keys))
	p.keymap[k] = i
	p.keys = append(p.keys, k)
	return i
}

func (p *tablePool) value(v Value) uint32 {
	if i, ok := p.valuemap[v]; ok {
		return i
	}
	i := uint32(len(p.values))
	p.valuemap[v] = i
	p.values = append(p.values, EncodeValue(v))
	return i
}

// tags interns one feature's metadata and returns its flat tag list. Keys
// are visited in sorted order so encoding is deterministic.
func (p *tablePool) tags(md map[string]Value) []uint32 {
	if len(md) == 0 {
		return nil
	}
	names := make([]string, 0, len(md))
	for k := range md {
		names = append(names, k)
	}
	sort.Strings(names)
	tags := make([]uint32, 0, 2*len(names))
	for _, k := range names {
		tags = append(tags, p.key(k), p.value(md[k]))
	}
	return tags
}

// BuildTables de-duplicates the metadata of features, given in canonical
// layer order, into shared key and value tables plus per-feature tags.
func BuildTables(metadata []map[string]Value) (keys []string, values []RawValue, tags [][]uint32) {
	p := newTablePool()
	tags = make([][]uint32, len(metadata))
	for i, md := range metadata {
		tags[i] = p.tags(md)
	}
	return p.keys, p.values, tags
}
