package vectortile

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error kinds. Every decode failure is marked with exactly one of the
// top-level kinds so callers can branch with errors.Is.
var (
	ErrWireDecode       = errors.New("wire decode")
	ErrCommandStream    = errors.New("command stream")
	ErrGeometryAssembly = errors.New("geometry assembly")
	ErrMetadata         = errors.New("metadata")
	ErrValue            = errors.New("no legal value offered")
	ErrEmptyLayer       = errors.New("empty layer")
)

// Metadata sub-kinds, always also marked ErrMetadata.
var (
	ErrOddTagCount     = errors.New("odd tag count")
	ErrIndexOutOfRange = errors.New("tag index out of range")
	ErrDuplicateKey    = errors.New("duplicate key")
)

func commandErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCommandStream)
}

func geometryErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrGeometryAssembly)
}

func metadataErrorf(kind error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(kind, format, args...), ErrMetadata)
}

// LayerErrors collects per-layer failures when Options.CollectErrors is set.
type LayerErrors []error

func (le LayerErrors) Error() string {
	if len(le) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(le)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(le[i].Error())
	}
	if len(le) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(le))
	}
	return b.String()
}

// Is reports whether any collected error matches target.
func (le LayerErrors) Is(target error) bool {
	for _, err := range le {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Unwrap exposes the collected errors to the standard errors package.
func (le LayerErrors) Unwrap() []error { return le }
