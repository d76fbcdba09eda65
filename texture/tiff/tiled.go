package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// decoded tiles kept per image
const tileCacheSize = 200

// Image is a lazily decoded TIFF that owns a memory mapping.
type Image interface {
	image.Image
	io.Closer
}

type tiledTiff struct {
	header      TiffHeader
	reader      *mmap.ReaderAt
	cache       *lru.Cache // tileIndex -> []byte
	tilesAcross int
}

// LoadTiledTiff memory-maps a tiled TIFF, uncompressed or DEFLATE.
// Decoded tiles are kept in an LRU cache.
func LoadTiledTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseTiffHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := checkTiled(header); err != nil {
		reader.Close()
		return nil, err
	}

	cache, err := lru.New(tileCacheSize)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &tiledTiff{
		header:      header,
		reader:      reader,
		cache:       cache,
		tilesAcross: (header.Width + header.TileWidth - 1) / header.TileWidth,
	}, nil
}

func checkTiled(h TiffHeader) error {
	if len(h.TileOffsets) == 0 || h.TileWidth <= 0 || h.TileHeight <= 0 {
		return ErrInvalidTiffHeader
	}
	if h.Compression != CompressionNone && h.Compression != CompressionDeflate {
		return fmt.Errorf("unsupported tile compression: %d", h.Compression)
	}
	if err := validatePixelFormat(h); err != nil {
		return err
	}
	if len(h.TileOffsets) != len(h.TileByteCounts) {
		return fmt.Errorf("invalid tile offset/length")
	}
	return nil
}

func (t *tiledTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) Close() error {
	t.cache.Purge()
	return t.reader.Close()
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	tileIndex := (y/h.TileHeight)*t.tilesAcross + x/h.TileWidth

	var tile []byte
	if val, ok := t.cache.Get(tileIndex); ok {
		tile = val.([]byte)
	} else {
		var err error
		tile, err = t.loadTile(tileIndex)
		if err != nil {
			return color.RGBA{}
		}
		t.cache.Add(tileIndex, tile)
	}

	localX := x % h.TileWidth
	localY := y % h.TileHeight
	rowStride := h.TileWidth * h.SamplesPerPixel
	pixOffset := localY*rowStride + localX*h.SamplesPerPixel
	if pixOffset+h.SamplesPerPixel > len(tile) {
		return color.RGBA{}
	}

	if h.Photometric == PhotometricBlackIsZero {
		v := tile[pixOffset]
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return color.RGBA{
		R: tile[pixOffset],
		G: tile[pixOffset+1],
		B: tile[pixOffset+2],
		A: 255,
	}
}

func (t *tiledTiff) loadTile(index int) ([]byte, error) {
	h := t.header
	if index >= len(h.TileOffsets) {
		return nil, fmt.Errorf("tile %d out of range", index)
	}

	buf := make([]byte, h.TileByteCounts[index])
	if _, err := t.reader.ReadAt(buf, int64(h.TileOffsets[index])); err != nil {
		return nil, fmt.Errorf("reading tile %d: %w", index, err)
	}

	if h.Compression != CompressionDeflate {
		return buf, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("inflating tile %d: %w", index, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
