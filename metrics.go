package vectortile

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	layersDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vectortile_layers_decoded_total",
		Help: "Total number of layers decoded",
	})
	layersEncoded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vectortile_layers_encoded_total",
		Help: "Total number of layers encoded",
	})
	featuresDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vectortile_features_decoded_total",
		Help: "Total number of features decoded by geometry type",
	}, []string{"geom_type"})
	featuresDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vectortile_features_dropped_total",
		Help: "Total number of features of unknown geometry type skipped",
	})
	decodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vectortile_decode_errors_total",
		Help: "Total number of failed decodes by error kind",
	}, []string{"kind"})
)

// RegisterMetrics registers the codec's collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{layersDecoded, layersEncoded, featuresDecoded, featuresDropped, decodeErrors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ErrorKind names the error kind err is marked with, for labels and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWireDecode):
		return "wire"
	case errors.Is(err, ErrCommandStream):
		return "command_stream"
	case errors.Is(err, ErrGeometryAssembly):
		return "geometry"
	case errors.Is(err, ErrMetadata):
		return "metadata"
	case errors.Is(err, ErrValue):
		return "value"
	case errors.Is(err, ErrEmptyLayer):
		return "empty_layer"
	}
	return "other"
}

func countDecodeError(err error) {
	if le, ok := err.(LayerErrors); ok {
		for _, e := range le {
			decodeErrors.WithLabelValues(ErrorKind(e)).Inc()
		}
		return
	}
	decodeErrors.WithLabelValues(ErrorKind(err)).Inc()
}
