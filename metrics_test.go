package vectortile

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.Error(t, RegisterMetrics(reg))
}

func TestMetricsCountDecodes(t *testing.T) {
	dropped := testutil.ToFloat64(featuresDropped)
	points := testutil.ToFloat64(featuresDecoded.WithLabelValues("point"))
	metadataErrs := testutil.ToFloat64(decodeErrors.WithLabelValues("metadata"))

	_, err := DecodeLayer(RawLayer{
		Version: 2,
		Features: []RawFeature{
			{Type: GeomUnknown},
			{Type: GeomUnknown},
			{Type: GeomPoint, Geometry: []uint32{9, 4, 4}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, dropped+2, testutil.ToFloat64(featuresDropped))
	require.Equal(t, points+1, testutil.ToFloat64(featuresDecoded.WithLabelValues("point")))

	_, err = DecodeLayer(RawLayer{Version: 2, Features: []RawFeature{{Type: GeomPoint, Geometry: []uint32{9, 4, 4}, Tags: []uint32{3}}}})
	require.Error(t, err)
	require.Equal(t, metadataErrs+1, testutil.ToFloat64(decodeErrors.WithLabelValues("metadata")))
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, "", ErrorKind(nil))
	require.Equal(t, "wire", ErrorKind(errors.Wrap(ErrWireDecode, "x")))
	require.Equal(t, "command_stream", ErrorKind(commandErrorf("bad")))
	require.Equal(t, "geometry", ErrorKind(geometryErrorf("bad")))
	require.Equal(t, "metadata", ErrorKind(metadataErrorf(ErrDuplicateKey, "k")))
	require.Equal(t, "value", ErrorKind(ErrValue))
	require.Equal(t, "empty_layer", ErrorKind(errors.Mark(errors.New("x"), ErrEmptyLayer)))
	require.Equal(t, "other", ErrorKind(errors.New("x")))
}
