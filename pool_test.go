package vectortile

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestResolveMetadata(t *testing.T) {
	keys := []string{"a", "b"}
	values := []RawValue{EncodeValue(StringValue("x")), EncodeValue(IntValue(3))}

	md, err := ResolveMetadata(keys, values, []uint32{0, 0, 1, 1})
	require.NoError(t, err)
	require.Equal(t, map[string]Value{"a": StringValue("x"), "b": IntValue(3)}, md)

	md, err = ResolveMetadata(keys, values, nil)
	require.NoError(t, err)
	require.NotNil(t, md)
	require.Empty(t, md)
}

func TestResolveMetadataErrors(t *testing.T) {
	keys := []string{"a"}
	values := []RawValue{EncodeValue(IntValue(1)), EncodeValue(IntValue(2))}

	cases := []struct {
		name string
		tags []uint32
		kind error
	}{
		{"duplicate key", []uint32{0, 0, 0, 1}, ErrDuplicateKey},
		{"odd tags", []uint32{0, 1, 2}, ErrOddTagCount},
		{"key out of range", []uint32{1, 0}, ErrIndexOutOfRange},
		{"value out of range", []uint32{0, 2}, ErrIndexOutOfRange},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ResolveMetadata(keys, values, c.tags)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMetadata), "got %v", err)
			require.True(t, errors.Is(err, c.kind), "got %v", err)
		})
	}

	// odd count wins regardless of table sizes
	_, err := ResolveMetadata(nil, nil, []uint32{0, 1, 2})
	require.True(t, errors.Is(err, ErrOddTagCount))

	_, err = ResolveMetadata(keys, []RawValue{{}}, []uint32{0, 0})
	require.True(t, errors.Is(err, ErrValue))
}

func TestBuildTables(t *testing.T) {
	keys, values, tags := BuildTables([]map[string]Value{
		{"a": IntValue(1), "b": StringValue("x")},
		{"a": UintValue(1), "c": StringValue("x")},
		{"a": IntValue(1)},
		{},
	})
	require.Equal(t, []string{"a", "b", "c"}, keys)
	require.Equal(t, []RawValue{
		EncodeValue(IntValue(1)),
		EncodeValue(StringValue("x")),
		EncodeValue(UintValue(1)),
	}, values)
	require.Equal(t, [][]uint32{{0, 0, 1, 1}, {0, 2, 2, 1}, {0, 0}, nil}, tags)

	for i, md := range []map[string]Value{
		{"a": IntValue(1), "b": StringValue("x")},
		{"a": UintValue(1), "c": StringValue("x")},
	} {
		got, err := ResolveMetadata(keys, values, tags[i])
		require.NoError(t, err)
		require.Equal(t, md, got)
	}
}
