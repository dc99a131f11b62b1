package optimize

import "encoding/binary"

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerSOS    = 0xDA
	markerAPP1   = 0xE1 // EXIF, XMP
	markerAPP2   = 0xE2 // ICC profile
)

// metadataSegments returns the APP1 and APP2 segments of a JPEG stream,
// marker and length included, in stream order.
func metadataSegments(data []byte) [][]byte {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil
	}

	var segs [][]byte
	for i := 2; i+4 <= len(data); {
		if data[i] != markerPrefix {
			break
		}

		marker := data[i+1]
		switch {
		case marker == markerPrefix:
			// Fill byte.
			i++
			continue
		case marker == markerSOS || marker == markerEOI:
			return segs
		case marker >= 0xD0 && marker <= 0xD7 || marker == 0x01:
			// Standalone markers carry no length.
			i += 2
			continue
		}

		n := int(binary.BigEndian.Uint16(data[i+2:]))
		if n < 2 || i+2+n > len(data) {
			break
		}
		if marker == markerAPP1 || marker == markerAPP2 {
			segs = append(segs, data[i:i+2+n])
		}
		i += 2 + n
	}

	return segs
}

// withSegments inserts segs right after the SOI marker of a JPEG stream.
func withSegments(jpg []byte, segs [][]byte) []byte {
	if len(segs) == 0 || len(jpg) < 2 || jpg[0] != markerPrefix || jpg[1] != markerSOI {
		return jpg
	}

	size := len(jpg)
	for _, s := range segs {
		size += len(s)
	}

	out := make([]byte, 0, size)
	out = append(out, jpg[:2]...)
	for _, s := range segs {
		out = append(out, s...)
	}
	return append(out, jpg[2:]...)
}
