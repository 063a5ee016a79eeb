package vectortile

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// Tile is a decoded vector tile.
type Tile struct {
	Layers []Layer `json:"layers"`
}

// Options tunes a Converter.
type Options struct {
	// Workers bounds how many layers are converted concurrently. Values
	// below 2 convert layers one after another.
	Workers int
	// CollectErrors makes DecodeTile convert every layer and return all
	// failures as LayerErrors instead of stopping at the first one.
	CollectErrors bool
	Logger        log.FieldLogger
}

// DefaultOptions uses DefaultWorkers and the logrus standard logger.
func DefaultOptions() Options {
	return Options{
		Workers: DefaultWorkers(),
		Logger:  log.StandardLogger(),
	}
}

// DefaultWorkers reads MAX_THREADS, falling back to the CPU count, and
// rounds down to a power of two.
func DefaultWorkers() int {
	cpus := runtime.NumCPU()
	if s := os.Getenv("MAX_THREADS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			log.Errorf("MAX_THREADS must be a number (got %s)", s)
		} else {
			cpus = n
		}
	}
	if cpus < 1 {
		cpus = 1
	}
	if cpus > 32767 {
		cpus = 32767
	}
	return 1 << uint(math.Log2(float64(cpus)))
}

// Converter turns raw tiles into decoded tiles and back.
type Converter struct {
	opts Options
}

// NewConverter returns a Converter, filling unset options with defaults.
func NewConverter(opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &Converter{opts: opts}
}

var defaultConverter = NewConverter(Options{Workers: 1})

// DecodeLayer decodes a single raw layer.
func (c *Converter) DecodeLayer(raw RawLayer) (Layer, error) {
	l, err := decodeLayer(raw, c.opts.Logger)
	if err != nil {
		err = errors.Wrapf(err, "layer %q", raw.Name)
		countDecodeError(err)
		return Layer{}, err
	}
	return l, nil
}

// EncodeLayer encodes a single layer. It never fails.
func (c *Converter) EncodeLayer(l Layer) RawLayer {
	return encodeLayer(l)
}

// DecodeTile decodes every layer. By default the first failing layer, in
// layer order, aborts the conversion and no partial tile is returned.
func (c *Converter) DecodeTile(raw RawTile) (Tile, error) {
	n := len(raw.Layers)
	layers := make([]Layer, n)
	errs := make([]error, n)

	// lowest index of a failed layer; later layers may be skipped
	var failed atomic.Int64
	failed.Store(math.MaxInt64)
	run := func(i int) {
		if !c.opts.CollectErrors && int64(i) > failed.Load() {
			return
		}
		l, err := decodeLayer(raw.Layers[i], c.opts.Logger)
		if err != nil {
			errs[i] = errors.Wrapf(err, "layer %d %q", i, raw.Layers[i].Name)
			for {
				cur := failed.Load()
				if int64(i) >= cur || failed.CompareAndSwap(cur, int64(i)) {
					break
				}
			}
			return
		}
		layers[i] = l
	}

	workers := c.opts.Workers
	if workers > n {
		workers = n
	}
	if workers < 2 {
		for i := 0; i < n; i++ {
			run(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					run(i)
				}
			}()
		}
		for i := 0; i < n; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	var all LayerErrors
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !c.opts.CollectErrors {
			countDecodeError(err)
			return Tile{}, err
		}
		all = append(all, err)
	}
	if len(all) > 0 {
		countDecodeError(all)
		return Tile{}, all
	}
	return Tile{Layers: layers}, nil
}

// EncodeTile encodes every layer. It never fails.
func (c *Converter) EncodeTile(t Tile) RawTile {
	raw := RawTile{Layers: make([]RawLayer, len(t.Layers))}
	for i, l := range t.Layers {
		raw.Layers[i] = encodeLayer(l)
	}
	return raw
}

// Unmarshal parses wire bytes and decodes the tile.
func (c *Converter) Unmarshal(data []byte) (Tile, error) {
	raw, err := DecodeMessage(data)
	if err != nil {
		countDecodeError(err)
		return Tile{}, err
	}
	return c.DecodeTile(raw)
}

// Marshal encodes the tile to wire bytes.
func (c *Converter) Marshal(t Tile) []byte {
	return EncodeMessage(c.EncodeTile(t))
}

// DecodeLayer decodes a raw layer with the default converter.
func DecodeLayer(raw RawLayer) (Layer, error) { return defaultConverter.DecodeLayer(raw) }

// EncodeLayer encodes a layer with the default converter.
func EncodeLayer(l Layer) RawLayer { return defaultConverter.EncodeLayer(l) }

// DecodeTile decodes a raw tile with the default converter.
func DecodeTile(raw RawTile) (Tile, error) { return defaultConverter.DecodeTile(raw) }

// EncodeTile encodes a tile with the default converter.
func EncodeTile(t Tile) RawTile { return defaultConverter.EncodeTile(t) }

// Unmarshal parses and decodes wire bytes with the default converter.
func Unmarshal(data []byte) (Tile, error) { return defaultConverter.Unmarshal(data) }

// Marshal encodes a tile to wire bytes with the default converter.
func Marshal(t Tile) []byte { return defaultConverter.Marshal(t) }
