package vectortile

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"io"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3" // import sqlite3 driver
)

//MBTiles is a sqlite tile store in the MBTiles 1.3 layout.
type MBTiles struct {
	db *sql.DB
	// Compress gzips tiles on write, as most MBTiles consumers expect.
	Compress bool
}

//OpenMBTiles opens or creates the store at path.
func OpenMBTiles(path string) (*MBTiles, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range []string{
		"PRAGMA synchronous=0",
		"PRAGMA journal_mode=DELETE",
		"create table if not exists tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob);",
		"create table if not exists metadata (name text, value text);",
		"create unique index if not exists name on metadata (name);",
		"create unique index if not exists tile_index on tiles(zoom_level, tile_column, tile_row);",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "mbtiles %s", path)
		}
	}
	return &MBTiles{db: db, Compress: true}, nil
}

//Close analyzes and closes the database.
func (m *MBTiles) Close() error {
	if m.db == nil {
		return nil
	}
	if _, err := m.db.Exec("ANALYZE;"); err != nil {
		m.db.Close()
		return err
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// tmsRow flips an XYZ row into the TMS row MBTiles stores.
func tmsRow(z, y int) int {
	return 1<<uint(z) - 1 - y
}

//WriteTile stores raw tile bytes under XYZ coordinates.
func (m *MBTiles) WriteTile(z, x, y int, data []byte) error {
	if m.Compress {
		var err error
		if data, err = deflate(data); err != nil {
			return err
		}
	}
	_, err := m.db.Exec("insert or replace into tiles (zoom_level, tile_column, tile_row, tile_data) values (?, ?, ?, ?);", z, x, tmsRow(z, y), data)
	return err
}

//ReadTile loads raw tile bytes, inflating gzip blobs. A missing tile yields
//nil data and no error.
func (m *MBTiles) ReadTile(z, x, y int) ([]byte, error) {
	var data []byte
	err := m.db.QueryRow("select tile_data from tiles where zoom_level = ? and tile_column = ? and tile_row = ?;", z, x, tmsRow(z, y)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inflate(data)
}

//WriteMetadata sets one metadata row.
func (m *MBTiles) WriteMetadata(name, value string) error {
	_, err := m.db.Exec("insert or replace into metadata (name, value) values (?, ?);", name, value)
	return err
}

//ReadMetadata returns every metadata row.
func (m *MBTiles) ReadMetadata() (map[string]string, error) {
	rows, err := m.db.Query("select name, value from metadata;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	md := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		md[name] = value
	}
	return md, rows.Err()
}

// ReadMBTile decodes the tile at z/x/y of store.
func (c *Converter) ReadMBTile(store *MBTiles, z, x, y int) (Tile, error) {
	data, err := store.ReadTile(z, x, y)
	if err != nil {
		return Tile{}, err
	}
	if data == nil {
		return Tile{}, errors.Newf("tile %d/%d/%d not found", z, x, y)
	}
	return c.Unmarshal(data)
}

// WriteMBTile encodes t into store at z/x/y.
func (c *Converter) WriteMBTile(store *MBTiles, z, x, y int, t Tile) error {
	return store.WriteTile(z, x, y, c.Marshal(t))
}

// ReadMBTile decodes a stored tile with the default converter.
func ReadMBTile(store *MBTiles, z, x, y int) (Tile, error) {
	return defaultConverter.ReadMBTile(store, z, x, y)
}

// WriteMBTile stores a tile with the default converter.
func WriteMBTile(store *MBTiles, z, x, y int, t Tile) error {
	return defaultConverter.WriteMBTile(store, z, x, y, t)
}

func inflate(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
