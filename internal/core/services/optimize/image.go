package optimize

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"path"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

func (o *Optimizer) optimizeImage(name string, data []byte, opts *domain.ImageOptions) ([]byte, error) {
	if opts == nil {
		return data, nil
	}

	// Vector images and animations are kept as authored.
	switch strings.ToLower(path.Ext(name)) {
	case ".svg", ".gif":
		return data, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fail(name, domain.CategoryImage, "decode", data, err)
	}
	if cfg.Width*cfg.Height > o.opts.MaxPixels {
		return fail(name, domain.CategoryImage, "too_large", data, nil)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fail(name, domain.CategoryImage, "decode", data, err)
	}

	// CMYK sources carry print ICC profiles that do not survive an RGB re-encode.
	if _, ok := img.(*image.CMYK); ok {
		return data, nil
	}

	target := targetFormat(name, format, img, opts.ConvertTo)
	if target == "" {
		return data, nil
	}

	img = fitInside(img, opts.MaxWidth, opts.MaxHeight)

	buf := o.buffers.Get()

	switch target {
	case domain.FormatJPEG:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: opts.Quality})
	case domain.FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(buf, img)
	}
	if err != nil {
		o.buffers.Put(buf)
		return fail(name, domain.CategoryImage, "encode", data, err)
	}

	out := o.buffers.Detach(buf)
	if opts.PreserveMetadata && format == "jpeg" && target == domain.FormatJPEG {
		out = withSegments(out, metadataSegments(data))
	}

	if len(out) >= len(data) {
		return data, nil
	}
	return out, nil
}

// targetFormat picks the output encoding, or "" when the image cannot be
// re-encoded. The entry name and the manifest media type stay as they are,
// so a conversion only happens when it brings the bytes in line with the
// file extension. Sources with transparency are never converted to JPEG.
func targetFormat(name, source string, img image.Image, convertTo domain.ImageFormat) domain.ImageFormat {
	current := domain.ImageFormat("")
	switch source {
	case "jpeg":
		current = domain.FormatJPEG
	case "png":
		current = domain.FormatPNG
	}

	if convertTo == domain.FormatPreserve || convertTo == current || extensionFormat(name) != convertTo {
		return current
	}
	if convertTo == domain.FormatPNG || opaque(img) {
		return convertTo
	}
	return current
}

func extensionFormat(name string) domain.ImageFormat {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return domain.FormatJPEG
	case ".png":
		return domain.FormatPNG
	}
	return ""
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// fitInside scales img down so it fits in maxW x maxH, preserving aspect
// ratio. Images already inside the box are returned unchanged.
func fitInside(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
