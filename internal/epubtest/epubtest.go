// Package epubtest builds small EPUB archives for tests.
package epubtest

import (
	"bytes"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// File is one archive record. Names ending in "/" become directories.
type File struct {
	Name string
	Body []byte
}

const mimetype = "application/epub+zip"

// Build writes an EPUB with a stored mimetype record followed by files,
// deflated, in order.
func Build(t testing.TB, files ...File) []byte {
	t.Helper()
	return BuildWithMimetype(t, mimetype, files...)
}

// BuildWithMimetype is Build with an arbitrary mimetype record body.
func BuildWithMimetype(t testing.TB, mimetype string, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	fw, err := w.CreateRaw(&zip.FileHeader{
		Name:               "mimetype",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte(mimetype)),
		CompressedSize64:   uint64(len(mimetype)),
		UncompressedSize64: uint64(len(mimetype)),
	})
	require.NoError(t, err)
	_, err = fw.Write([]byte(mimetype))
	require.NoError(t, err)

	for _, f := range files {
		method := zip.Deflate
		if strings.HasSuffix(f.Name, "/") {
			method = zip.Store
		}

		fw, err := w.CreateHeader(&zip.FileHeader{Name: f.Name, Method: method})
		require.NoError(t, err)
		_, err = fw.Write(f.Body)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Book returns a small but complete EPUB with every entry category and
// content the optimizer can shrink.
func Book(t testing.TB) []byte {
	t.Helper()

	chapter := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<html xmlns=\"http://www.w3.org/1999/xhtml\">\n" +
		"  <!-- exported by an authoring tool -->\n  <head>\n    <title>One</title>\n  </head>\n  <body>\n" +
		strings.Repeat("    <p>Call me   Ishmael.    Some years ago.</p>\n", 40) +
		"  </body>\n</html>\n"

	return Build(t,
		File{Name: "META-INF/"},
		File{Name: "META-INF/container.xml", Body: []byte(
			"<?xml version=\"1.0\"?>\n<container version=\"1.0\">\n  <rootfiles>\n" +
				"    <rootfile full-path=\"OEBPS/content.opf\" media-type=\"application/oebps-package+xml\"/>\n" +
				"  </rootfiles>\n</container>\n",
		)},
		File{Name: "OEBPS/content.opf", Body: []byte(
			"<?xml version=\"1.0\"?>\n<package version=\"3.0\">\n  <!-- manifest -->\n  <manifest>\n" +
				"    <item id=\"c1\" href=\"ch1.xhtml\" media-type=\"application/xhtml+xml\"/>\n  </manifest>\n</package>\n",
		)},
		File{Name: "OEBPS/ch1.xhtml", Body: []byte(chapter)},
		File{Name: "OEBPS/style.css", Body: []byte("/* base */\nbody {\n  margin: 0;\n}\n\np {\n  text-indent: 1em;\n}\n")},
		File{Name: "OEBPS/images/cover.png", Body: PNG(t, 64, 48)},
		File{Name: "OEBPS/fonts/serif.ttf", Body: bytes.Repeat([]byte{0x00, 0x01, 0x00, 0x00}, 64)},
	)
}

// PNG encodes an opaque uncompressed gradient of the given size.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, img))
	return buf.Bytes()
}

// Record is a decoded archive record with its header details.
type Record struct {
	Name   string
	Method uint16
	Extra  []byte
	Flags  uint16
	Body   []byte
}

// Read decodes every record of an archive in directory order.
func Read(t testing.TB, data []byte) []Record {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make([]Record, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		out = append(out, Record{Name: f.Name, Method: f.Method, Extra: f.Extra, Flags: f.Flags, Body: body})
	}
	return out
}

// Names lists the record names of an archive in directory order.
func Names(t testing.TB, data []byte) []string {
	t.Helper()

	records := Read(t, data)
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names
}
