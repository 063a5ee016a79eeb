package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb/maptile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"

	"github.com/atlasdatatech/vectortile"
)

const usage = `usage: gotiler <command> [flags] <input>...

commands:
  decode   decode a tile file or MBTiles tile to JSON or GeoJSON
  encode   encode CSV point files into a tile file or MBTiles tile
  stat     print per-layer feature counts
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type tileFlags struct {
	config  *string
	mbtiles *string
	z, x, y *int
	workers *int
}

func addTileFlags(fs *flag.FlagSet) tileFlags {
	return tileFlags{
		config:  fs.String("config", "", "YAML config file"),
		mbtiles: fs.String("mbtiles", "", "MBTiles database instead of a tile file"),
		z:       fs.Int("z", 0, "tile zoom"),
		x:       fs.Int("x", 0, "tile column"),
		y:       fs.Int("y", 0, "tile row (XYZ scheme)"),
		workers: fs.Int("workers", 0, "layers converted in parallel (default MAX_THREADS or CPU count)"),
	}
}

func (tf tileFlags) setup() (Config, *vectortile.Converter, *prometheus.Registry, error) {
	cfg, err := loadConfig(*tf.config)
	if err != nil {
		return cfg, nil, nil, err
	}
	if *tf.workers > 0 {
		cfg.Workers = *tf.workers
	}
	setupLogger(cfg)
	log.Debugf("CPUs: %d, workers: %d", runtime.NumCPU(), cfg.Workers)

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		if err := vectortile.RegisterMetrics(reg); err != nil {
			return cfg, nil, nil, err
		}
	}
	conv := vectortile.NewConverter(vectortile.Options{
		Workers:       cfg.Workers,
		CollectErrors: cfg.CollectErrors,
		Logger:        log.StandardLogger(),
	})
	return cfg, conv, reg, nil
}

func run(cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "decode":
		return runDecode(args, out)
	case "encode":
		return runEncode(args)
	case "stat":
		return runStat(args, out)
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func runDecode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	tf := addTileFlags(fs)
	format := fs.String("format", "json", "output format (json, geojson)")
	proj := fs.String("proj", "", "GeoJSON projection (EPSG:4326, EPSG:3857, tile)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, conv, reg, err := tf.setup()
	if err != nil {
		return err
	}
	defer dumpMetrics(reg)

	t, err := readTile(conv, tf, fs.Args())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	switch *format {
	case "json":
		return enc.Encode(t)
	case "geojson":
		name := cfg.Projection
		if *proj != "" {
			name = *proj
		}
		p, err := vectortile.ProjectionByName(name)
		if err != nil {
			return err
		}
		tile := maptile.New(uint32(*tf.x), uint32(*tf.y), maptile.Zoom(*tf.z))
		return enc.Encode(t.ToGeoJSON(tile, p))
	}
	return fmt.Errorf("unknown format %q", *format)
}

func runStat(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)
	tf := addTileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, conv, reg, err := tf.setup()
	if err != nil {
		return err
	}
	defer dumpMetrics(reg)

	t, err := readTile(conv, tf, fs.Args())
	if err != nil {
		return err
	}
	for _, l := range t.Layers {
		fmt.Fprintf(out, "%s\tv%d\textent=%d\tpoints=%d\tlinestrings=%d\tpolygons=%d\n",
			l.Name, l.Version, l.Extent, len(l.Points), len(l.LineStrings), len(l.Polygons))
	}
	return nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	tf := addTileFlags(fs)
	output := fs.String("o", "out.mvt", "output tile file, ignored with -mbtiles")
	layer := fs.String("layer", "", "layer name for a single input (default: file base name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, conv, reg, err := tf.setup()
	if err != nil {
		return err
	}
	defer dumpMetrics(reg)

	inputs := fs.Args()
	if len(inputs) == 0 {
		return fmt.Errorf("encode: no CSV input")
	}
	var t vectortile.Tile
	for _, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		if *layer != "" && len(inputs) == 1 {
			name = *layer
		}
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		l, err := vectortile.ReadCSVLayer(f, name)
		f.Close()
		if err != nil {
			return err
		}
		log.Infof("%s: %d points", name, len(l.Points))
		t.Layers = append(t.Layers, l)
	}

	if *tf.mbtiles != "" {
		store, err := vectortile.OpenMBTiles(*tf.mbtiles)
		if err != nil {
			return err
		}
		if err := conv.WriteMBTile(store, *tf.z, *tf.x, *tf.y, t); err != nil {
			store.Close()
			return err
		}
		if err := store.WriteMetadata("format", "pbf"); err != nil {
			store.Close()
			return err
		}
		return store.Close()
	}
	return conv.WriteTileFile(*output, t)
}

func readTile(conv *vectortile.Converter, tf tileFlags, inputs []string) (vectortile.Tile, error) {
	if *tf.mbtiles != "" {
		store, err := vectortile.OpenMBTiles(*tf.mbtiles)
		if err != nil {
			return vectortile.Tile{}, err
		}
		defer store.Close()
		return conv.ReadMBTile(store, *tf.z, *tf.x, *tf.y)
	}
	if len(inputs) != 1 {
		return vectortile.Tile{}, fmt.Errorf("want exactly one tile file, got %d", len(inputs))
	}
	checkMemory(inputs[0])
	return conv.ReadTileFile(inputs[0])
}

// checkMemory warns when an input is unlikely to fit in available memory
// once decoded.
func checkMemory(path string) {
	st, err := os.Stat(path)
	if err != nil {
		return
	}
	v, err := mem.VirtualMemory()
	if err != nil {
		log.Debugf("virtual memory: %s", err)
		return
	}
	if uint64(st.Size())*4 > v.Available {
		log.Warningf("%s is %d bytes, only %d bytes of memory available", path, st.Size(), v.Available)
	}
	logMemUsage()
}

func logMemUsage() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Debugf("Alloc = %v MiB, Sys = %v MiB, NumGC = %v", m.Alloc/1024/1024, m.Sys/1024/1024, m.NumGC)
}

func dumpMetrics(reg *prometheus.Registry) {
	if reg == nil {
		return
	}
	mfs, err := reg.Gather()
	if err != nil {
		log.Error(err)
		return
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stderr, mf); err != nil {
			log.Error(err)
			return
		}
	}
}
