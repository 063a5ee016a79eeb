package vectortile

import (
	"os"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tysonmote/gommap"
)

//MemFile is a read-only memory mapping of a tile file.
type MemFile struct {
	File *os.File
	Map  gommap.MMap
}

//OpenMemFile maps path into memory. Empty files are not mapped.
func OpenMemFile(path string) (*MemFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	mf := &MemFile{File: file}
	if st.Size() == 0 {
		return mf, nil
	}
	mmap, err := gommap.Map(file.Fd(), gommap.PROT_READ, gommap.MAP_PRIVATE)
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	mf.Map = mmap
	return mf, nil
}

//Bytes returns the mapped contents; they are invalid after Close.
func (mf *MemFile) Bytes() []byte {
	return mf.Map
}

//Close unmaps and closes the file.
func (mf *MemFile) Close() error {
	if mf.Map != nil {
		if err := mf.Map.UnsafeUnmap(); err != nil {
			return err
		}
		mf.Map = nil
	}
	return mf.File.Close()
}

// ReadTileFile decodes the tile stored at path. Decoded values are copied
// out of the mapping before it is released.
func (c *Converter) ReadTileFile(path string) (Tile, error) {
	mf, err := OpenMemFile(path)
	if err != nil {
		return Tile{}, err
	}
	defer func() {
		if err := mf.Close(); err != nil {
			log.Error(err)
		}
	}()
	data, err := inflate(mf.Bytes())
	if err != nil {
		return Tile{}, errors.Wrapf(err, "read %s", path)
	}
	return c.Unmarshal(data)
}

// WriteTileFile encodes t to path, replacing any existing file.
func (c *Converter) WriteTileFile(path string, t Tile) error {
	return os.WriteFile(path, c.Marshal(t), 0o644)
}

// ReadTileFile decodes a tile file with the default converter.
func ReadTileFile(path string) (Tile, error) { return defaultConverter.ReadTileFile(path) }

// WriteTileFile encodes a tile file with the default converter.
func WriteTileFile(path string, t Tile) error { return defaultConverter.WriteTileFile(path, t) }
