package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type TiffHeader struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
)

// Compression schemes understood by the mmap readers.
const (
	CompressionNone    = 1
	CompressionDeflate = 8
)

// Photometric interpretations understood by the mmap readers.
const (
	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
)

// IFD field types.
const (
	typeShort = 3
	typeLong  = 4
)

var ErrInvalidTiffHeader = errors.New("invalid TIFF header")

func parseTiffHeader(reader io.ReaderAt) (TiffHeader, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	// Read 8-byte header
	header, err := read(0, 8)
	if err != nil {
		return TiffHeader{}, ErrInvalidTiffHeader
	}

	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return TiffHeader{}, ErrInvalidTiffHeader
	}
	if bo.Uint16(header[2:4]) != 42 {
		return TiffHeader{}, ErrInvalidTiffHeader
	}
	ifdOffset := int64(bo.Uint32(header[4:8]))

	entryCountRaw, err := read(ifdOffset, 2)
	if err != nil {
		return TiffHeader{}, fmt.Errorf("reading IFD entry count: %w", err)
	}
	numEntries := int(bo.Uint16(entryCountRaw))
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return TiffHeader{}, fmt.Errorf("reading IFD entries: %w", err)
	}

	hdr := TiffHeader{
		ByteOrder:       bo,
		SamplesPerPixel: 1,
		Photometric:     -1,
		Compression:     CompressionNone,
		PlanarConfig:    1,
	}

	for i := 0; i < numEntries; i++ {
		entry := entriesRaw[i*12 : (i+1)*12]
		tag := bo.Uint16(entry[0:2])
		typ := bo.Uint16(entry[2:4])
		count := bo.Uint32(entry[4:8])

		// scalar values are left-justified in the value field
		scalar := int(bo.Uint32(entry[8:12]))
		if typ == typeShort {
			scalar = int(bo.Uint16(entry[8:10]))
		}

		readArray := func() ([]int, error) {
			size := 4
			if typ == typeShort {
				size = 2
			}
			var buf []byte
			if int(count)*size <= 4 {
				buf = entry[8 : 8+int(count)*size]
			} else {
				b, err := read(int64(bo.Uint32(entry[8:12])), int(count)*size)
				if err != nil {
					return nil, fmt.Errorf("reading tag %d: %w", tag, err)
				}
				buf = b
			}
			out := make([]int, count)
			for i := range out {
				if size == 2 {
					out[i] = int(bo.Uint16(buf[i*2:]))
				} else {
					out[i] = int(bo.Uint32(buf[i*4:]))
				}
			}
			return out, nil
		}

		switch tag {
		case TagImageWidth:
			hdr.Width = scalar
		case TagImageLength:
			hdr.Height = scalar
		case TagBitsPerSample:
			hdr.BitsPerSample, err = readArray()
		case TagCompression:
			hdr.Compression = scalar
		case TagPhotometricInterpretation:
			hdr.Photometric = scalar
		case TagStripOffsets:
			hdr.StripOffsets, err = readArray()
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel = scalar
		case TagRowsPerStrip:
			hdr.RowsPerStrip = scalar
		case TagStripByteCounts:
			hdr.StripByteCounts, err = readArray()
		case TagPlanarConfiguration:
			hdr.PlanarConfig = scalar
		case TagTileWidth:
			hdr.TileWidth = scalar
		case TagTileLength:
			hdr.TileHeight = scalar
		case TagTileOffsets:
			hdr.TileOffsets, err = readArray()
		case TagTileByteCounts:
			hdr.TileByteCounts, err = readArray()
		}
		if err != nil {
			return TiffHeader{}, err
		}
	}

	if hdr.Width <= 0 || hdr.Height <= 0 {
		return TiffHeader{}, fmt.Errorf("invalid dimensions %dx%d", hdr.Width, hdr.Height)
	}
	if hdr.RowsPerStrip <= 0 || hdr.RowsPerStrip > hdr.Height {
		hdr.RowsPerStrip = hdr.Height
	}
	return hdr, nil
}

// validatePixelFormat accepts 8-bit grayscale and 8-bit chunky RGB.
func validatePixelFormat(h TiffHeader) error {
	if len(h.BitsPerSample) == 0 || h.BitsPerSample[0] != 8 {
		return fmt.Errorf("unsupported bits per sample %v", h.BitsPerSample)
	}
	if h.PlanarConfig != 1 {
		return fmt.Errorf("unsupported planar configuration: %d", h.PlanarConfig)
	}
	switch h.Photometric {
	case PhotometricBlackIsZero:
		if h.SamplesPerPixel != 1 {
			return fmt.Errorf("unsupported grayscale format: %d samples/pixel", h.SamplesPerPixel)
		}
	case PhotometricRGB:
		if h.SamplesPerPixel != 3 {
			return fmt.Errorf("unsupported RGB format: %d samples/pixel", h.SamplesPerPixel)
		}
	default:
		return fmt.Errorf("unsupported photometric interpretation: %d", h.Photometric)
	}
	return nil
}
