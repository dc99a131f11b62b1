// Package archive reads and writes the ZIP containers EPUB books ship in.
package archive

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/pool"
)

const (
	// MimetypeName is the EPUB media type record.
	MimetypeName = "mimetype"

	// MimetypeContent is the only content an EPUB mimetype record may hold.
	MimetypeContent = "application/epub+zip"

	zipVersion20    = 20
	flagEncrypted   = 0x1
	flagUTF8        = 0x800
	maxDeflateLevel = 9
)

// ZipCodec implements ports.ArchiveCodec. It is safe for concurrent use.
type ZipCodec struct {
	opts      Options
	buffers   *pool.BufferPool
	deflaters *deflaters
}

// Creates a codec with the given limits.
func NewZipCodec(opts Options) (*ZipCodec, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	return &ZipCodec{
		opts:      opts,
		buffers:   pool.NewBufferPool(opts.BufferSize),
		deflaters: newDeflaters(),
	}, nil
}

// Open decodes every record of the archive in directory order.
func (c *ZipCodec) Open(data []byte) ([]*domain.Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.CorruptArchive("archive.open", err)
	}

	if len(r.File) > c.opts.MaxEntries {
		return nil, errors.CorruptArchive(
			"archive.open", fmt.Errorf("archive has %d entries, limit is %d", len(r.File), c.opts.MaxEntries),
		)
	}

	var expanded int64
	seen := make(map[string]struct{}, len(r.File))
	entries := make([]*domain.Entry, 0, len(r.File))

	for _, f := range r.File {
		if _, dup := seen[f.Name]; dup {
			return nil, errors.CorruptArchive("archive.open", fmt.Errorf("duplicate entry %q", f.Name))
		}
		seen[f.Name] = struct{}{}

		if f.Flags&flagEncrypted != 0 {
			return nil, errors.CorruptArchive("archive.open", fmt.Errorf("entry %q is encrypted", f.Name))
		}

		entry := &domain.Entry{Name: f.Name, IsDir: f.FileInfo().IsDir(), Modified: f.Modified}
		//nolint:staticcheck // raw writes need the legacy DOS timestamp
		entry.ModifiedDate, entry.ModifiedTime = f.ModifiedDate, f.ModifiedTime

		if !entry.IsDir {
			body, err := c.read(f, c.opts.MaxExpandedSize-expanded)
			if err != nil {
				return nil, errors.CorruptArchive("archive.open", fmt.Errorf("entry %q: %w", f.Name, err))
			}
			entry.Data = body
			entry.OriginalSize = int64(len(body))
			expanded += entry.OriginalSize
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *ZipCodec) read(f *zip.File, budget int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > budget {
		return nil, fmt.Errorf("archive expands beyond %d bytes", c.opts.MaxExpandedSize)
	}
	return body, nil
}

// Pack writes entries in order. Each entry is deflated independently at its
// own level, or stored when its level is zero or deflating does not shrink
// it. The mimetype record must come first with its exact content and is
// always stored without extra fields or data descriptor.
func (c *ZipCodec) Pack(entries []domain.PackEntry) ([]byte, error) {
	if err := checkMimetype(entries); err != nil {
		return nil, errors.Pack("archive.pack", err)
	}

	out := c.buffers.Get()

	scratch := c.buffers.Get()
	defer c.buffers.Put(scratch)

	w := zip.NewWriter(out)
	for _, e := range entries {
		if err := c.write(w, e, scratch); err != nil {
			_ = w.Close()
			c.buffers.Put(out)
			return nil, errors.Pack("archive.pack", fmt.Errorf("entry %q: %w", e.Name, err))
		}
	}

	if err := w.Close(); err != nil {
		c.buffers.Put(out)
		return nil, errors.Pack("archive.pack", err)
	}

	return c.buffers.Detach(out), nil
}

func (c *ZipCodec) write(w *zip.Writer, e domain.PackEntry, scratch *bytes.Buffer) error {
	if e.DeflateLevel < 0 || e.DeflateLevel > maxDeflateLevel {
		return fmt.Errorf("deflate level must be between 0 and %d, got %d", maxDeflateLevel, e.DeflateLevel)
	}

	fh := &zip.FileHeader{
		Name:           e.Name,
		Method:         zip.Store,
		CreatorVersion: zipVersion20,
		ReaderVersion:  zipVersion20,
	}

	if !utf8.ValidString(e.Name) {
		return fmt.Errorf("entry name is not valid UTF-8")
	}
	if !isASCII(e.Name) {
		fh.Flags |= flagUTF8
	}

	if e.Name != MimetypeName {
		fh.Modified = e.Modified
		//nolint:staticcheck // CreateRaw writes the DOS timestamp as given
		fh.ModifiedDate, fh.ModifiedTime = e.ModifiedDate, e.ModifiedTime
	}

	if e.IsDir {
		if !strings.HasSuffix(fh.Name, "/") {
			fh.Name += "/"
		}
		_, err := w.CreateRaw(fh)
		return err
	}

	payload := e.Data
	if e.DeflateLevel > 0 && e.Name != MimetypeName && len(e.Data) > 0 {
		scratch.Reset()
		if err := c.deflaters.compress(scratch, e.Data, e.DeflateLevel); err != nil {
			return err
		}
		if scratch.Len() < len(e.Data) {
			fh.Method = zip.Deflate
			payload = scratch.Bytes()
		}
	}

	fh.CRC32 = crc32.ChecksumIEEE(e.Data)
	fh.UncompressedSize64 = uint64(len(e.Data))
	fh.CompressedSize64 = uint64(len(payload))

	fw, err := w.CreateRaw(fh)
	if err != nil {
		return err
	}
	_, err = fw.Write(payload)
	return err
}

// checkMimetype enforces the EPUB container rule: a mimetype record, when
// present, is the first entry and holds exactly the EPUB media type.
func checkMimetype(entries []domain.PackEntry) error {
	for i, e := range entries {
		if e.Name != MimetypeName {
			continue
		}
		if i != 0 {
			return fmt.Errorf("mimetype entry at position %d, must be first", i)
		}
		if e.IsDir || string(e.Data) != MimetypeContent {
			return fmt.Errorf("mimetype entry content altered")
		}
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
