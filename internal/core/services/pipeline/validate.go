package pipeline

import (
	"bytes"
	"fmt"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

const (
	mimetypeName    = "mimetype"
	mimetypeContent = "application/epub+zip"
)

var (
	localHeaderSignature = []byte("PK\x03\x04")
	mimetypeRecord       = []byte("mimetypeapplication/epub+zip")
)

// Validate rejects inputs that are empty, larger than the configured
// maximum, or not shaped like an EPUB container. It only looks at the
// leading bytes; structural damage is detected when the archive is opened.
func (p *Pipeline) Validate(data []byte) error {
	return validateInput(data, p.opts.MaxInputSize)
}

func validateInput(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return errors.NewValidationError(errors.CodeNoFile, "file", 0, nil)
	}
	if int64(len(data)) > maxSize {
		return errors.NewValidationError(errors.CodeFileTooLarge, "file", len(data), nil)
	}
	if !bytes.HasPrefix(data, localHeaderSignature) {
		return errors.NewValidationError(errors.CodeInvalidFormat, "file", len(data), nil)
	}

	head := data[:min(len(data), sniffWindow)]
	if !bytes.Contains(head, mimetypeRecord) {
		return errors.NewValidationError(errors.CodeInvalidFormat, "file", len(data), nil)
	}
	return nil
}

// validateMimetype checks the opened mimetype record. The leading-bytes sniff
// accepts a record that merely starts with the media type, which the packer
// would refuse to write back.
func validateMimetype(entries []*domain.Entry) error {
	for _, e := range entries {
		if e.Name != mimetypeName {
			continue
		}
		if e.IsDir || string(e.Data) != mimetypeContent {
			return errors.NewValidationError(
				errors.CodeInvalidFormat, mimetypeName, len(e.Data),
				fmt.Errorf("mimetype entry must hold exactly %q", mimetypeContent),
			)
		}
		return nil
	}
	return nil
}
