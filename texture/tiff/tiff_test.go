package tiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	xtiff "golang.org/x/image/tiff"
)

type ifdEntry struct {
	tag, typ uint16
	values   []uint32
}

// buildTiff lays out a little-endian TIFF: header, payload, IFD, then any
// arrays too large for the IFD value field.
func buildTiff(entries []ifdEntry, payload []byte) []byte {
	le := binary.LittleEndian
	var buf, extra bytes.Buffer

	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	ifdOff := 8 + len(payload)
	binary.Write(&buf, le, uint32(ifdOff))
	buf.Write(payload)

	extraOff := ifdOff + 2 + len(entries)*12 + 4
	binary.Write(&buf, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, le, e.tag)
		binary.Write(&buf, le, e.typ)
		binary.Write(&buf, le, uint32(len(e.values)))
		size := 4
		if e.typ == typeShort {
			size = 2
		}
		var val [4]byte
		if len(e.values)*size <= 4 {
			for i, v := range e.values {
				if size == 2 {
					le.PutUint16(val[i*2:], uint16(v))
				} else {
					le.PutUint32(val[:], v)
				}
			}
		} else {
			le.PutUint32(val[:], uint32(extraOff+extra.Len()))
			for _, v := range e.values {
				if size == 2 {
					binary.Write(&extra, le, uint16(v))
				} else {
					binary.Write(&extra, le, v)
				}
			}
		}
		buf.Write(val[:])
	}
	binary.Write(&buf, le, uint32(0))
	buf.Write(extra.Bytes())
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.tif")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

func TestLoadStripedRGB(t *testing.T) {
	payload := []byte{
		255, 0, 0, 0, 255, 0, // row 0
		0, 0, 255, 10, 20, 30, // row 1
	}
	path := writeFile(t, buildTiff([]ifdEntry{
		{TagImageWidth, typeShort, []uint32{2}},
		{TagImageLength, typeShort, []uint32{2}},
		{TagBitsPerSample, typeShort, []uint32{8, 8, 8}},
		{TagCompression, typeShort, []uint32{CompressionNone}},
		{TagPhotometricInterpretation, typeShort, []uint32{PhotometricRGB}},
		{TagStripOffsets, typeLong, []uint32{8, 14}},
		{TagSamplesPerPixel, typeShort, []uint32{3}},
		{TagRowsPerStrip, typeShort, []uint32{1}},
		{TagStripByteCounts, typeLong, []uint32{6, 6}},
	}, payload))

	img, err := LoadStripedTiff(path)
	if err != nil {
		t.Fatalf("LoadStripedTiff: %v", err)
	}
	defer img.Close()

	if got := img.At(1, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("At(1,0) = %v", got)
	}
	if got := img.At(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("At(1,1) = %v", got)
	}
	if got := img.At(7, 7); got != (color.RGBA{}) {
		t.Errorf("out of bounds = %v", got)
	}
}

func TestLoadTiledDeflate(t *testing.T) {
	red := bytes.Repeat([]byte{255, 0, 0}, 4)
	blue := bytes.Repeat([]byte{0, 0, 255}, 4)
	t0, t1 := deflate(t, red), deflate(t, blue)
	payload := append(append([]byte{}, t0...), t1...)

	path := writeFile(t, buildTiff([]ifdEntry{
		{TagImageWidth, typeShort, []uint32{4}},
		{TagImageLength, typeShort, []uint32{2}},
		{TagBitsPerSample, typeShort, []uint32{8, 8, 8}},
		{TagCompression, typeShort, []uint32{CompressionDeflate}},
		{TagPhotometricInterpretation, typeShort, []uint32{PhotometricRGB}},
		{TagSamplesPerPixel, typeShort, []uint32{3}},
		{TagTileWidth, typeShort, []uint32{2}},
		{TagTileLength, typeShort, []uint32{2}},
		{TagTileOffsets, typeLong, []uint32{8, uint32(8 + len(t0))}},
		{TagTileByteCounts, typeLong, []uint32{uint32(len(t0)), uint32(len(t1))}},
	}, payload))

	if _, err := LoadStripedTiff(path); !errors.Is(err, ErrInvalidTiffHeader) {
		t.Fatalf("striped loader on tiled file: err = %v, want ErrInvalidTiffHeader", err)
	}

	img, err := LoadTiledTiff(path)
	if err != nil {
		t.Fatalf("LoadTiledTiff: %v", err)
	}
	defer img.Close()

	if got := img.At(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("At(0,0) = %v", got)
	}
	if got := img.At(3, 1); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("At(3,1) = %v", got)
	}
	// second read comes from the tile cache
	if got := img.At(2, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("At(2,0) = %v", got)
	}
}

func TestLoadStripedGrayFromEncoder(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	src.SetGray(2, 1, color.Gray{Y: 200})

	var buf bytes.Buffer
	if err := xtiff.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := LoadStripedTiff(writeFile(t, buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadStripedTiff: %v", err)
	}
	defer img.Close()

	if got := img.At(2, 1); got != (color.RGBA{200, 200, 200, 255}) {
		t.Errorf("At(2,1) = %v", got)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("Bounds = %v", b)
	}
}

func TestRejectsNonTiff(t *testing.T) {
	path := writeFile(t, []byte("\x89PNG\r\n\x1a\n not a tiff"))
	if _, err := LoadStripedTiff(path); !errors.Is(err, ErrInvalidTiffHeader) {
		t.Errorf("striped: err = %v", err)
	}
	if _, err := LoadTiledTiff(path); !errors.Is(err, ErrInvalidTiffHeader) {
		t.Errorf("tiled: err = %v", err)
	}
}
