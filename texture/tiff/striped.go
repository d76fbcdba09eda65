package tiff

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/exp/mmap"
)

type stripedTiff struct {
	header TiffHeader
	reader *mmap.ReaderAt
}

// LoadStripedTiff memory-maps an uncompressed striped TIFF. Pixels are read
// on demand, so very large maps cost no heap.
func LoadStripedTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseTiffHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := checkStriped(header); err != nil {
		reader.Close()
		return nil, err
	}

	return &stripedTiff{header: header, reader: reader}, nil
}

func checkStriped(h TiffHeader) error {
	if len(h.StripOffsets) == 0 {
		return ErrInvalidTiffHeader
	}
	if h.Compression != CompressionNone {
		return fmt.Errorf("unsupported strip compression: %d", h.Compression)
	}
	if err := validatePixelFormat(h); err != nil {
		return err
	}
	if len(h.StripOffsets) != len(h.StripByteCounts) {
		return fmt.Errorf("invalid strip offset/length")
	}
	return nil
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) Close() error {
	return t.reader.Close()
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	idx := h.StripOffsets[strip] + (localY*h.Width+x)*h.SamplesPerPixel

	var buf [3]byte
	if _, err := t.reader.ReadAt(buf[:h.SamplesPerPixel], int64(idx)); err != nil {
		return color.RGBA{}
	}
	if h.Photometric == PhotometricBlackIsZero {
		return color.RGBA{R: buf[0], G: buf[0], B: buf[0], A: 255}
	}
	return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}
}
