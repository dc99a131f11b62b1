package optimize

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/services/profile"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

func imageProfile(t *testing.T, level domain.Level) domain.Profile {
	t.Helper()
	p, err := profile.Default().Lookup(domain.CategoryImage, level)
	require.NoError(t, err)
	return p
}

func gradient(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: alpha})
		}
	}
	return img
}

func noise(w, h int) *image.RGBA {
	r := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
		if i%4 == 3 {
			img.Pix[i] = 0xff
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func TestOptimizeImageHighConvertsOnlyToMatchExtension(t *testing.T) {
	in := encodePNG(t, gradient(2400, 1200, 0xff))

	tests := []struct {
		name   string
		entry  string
		format string
	}{
		{"png named png stays png", "Images/map.png", "png"},
		{"png named jpg becomes jpeg", "Images/map.jpg", "jpeg"},
		{"png with unknown extension stays png", "Images/map.img", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(logger.Nop(), Options{}).Optimize(tt.entry, in, imageProfile(t, domain.LevelHigh))
			require.NoError(t, err)
			require.Less(t, len(out), len(in))

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 1500, cfg.Width)
			assert.Equal(t, 750, cfg.Height)
		})
	}
}

func TestTargetFormat(t *testing.T) {
	opaqueImg := gradient(4, 4, 0xff)
	clearImg := gradient(4, 4, 0x80)

	tests := []struct {
		name      string
		entry     string
		source    string
		img       image.Image
		convertTo domain.ImageFormat
		want      domain.ImageFormat
	}{
		{"preserve", "a.png", "png", opaqueImg, domain.FormatPreserve, domain.FormatPNG},
		{"already target", "a.jpg", "jpeg", opaqueImg, domain.FormatJPEG, domain.FormatJPEG},
		{"extension disagrees with target", "a.png", "png", opaqueImg, domain.FormatJPEG, domain.FormatPNG},
		{"webp keeps its bytes", "a.webp", "webp", opaqueImg, domain.FormatJPEG, ""},
		{"mislabelled opaque png", "a.jpeg", "png", opaqueImg, domain.FormatJPEG, domain.FormatJPEG},
		{"mislabelled transparent png", "a.jpeg", "png", clearImg, domain.FormatJPEG, domain.FormatPNG},
		{"mislabelled jpeg to png", "a.PNG", "jpeg", opaqueImg, domain.FormatPNG, domain.FormatPNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetFormat(tt.entry, tt.source, tt.img, tt.convertTo))
		})
	}
}

func TestOptimizeImageKeepsTransparentPNG(t *testing.T) {
	in := encodePNG(t, gradient(2000, 400, 0x80))

	out, err := New(logger.Nop(), Options{}).Optimize("Images/logo.png", in, imageProfile(t, domain.LevelHigh))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 1500, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestOptimizeImageNeverEnlarges(t *testing.T) {
	in := encodePNG(t, gradient(300, 200, 0xff))

	out, err := New(logger.Nop(), Options{}).Optimize("small.png", in, imageProfile(t, domain.LevelMedium))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestOptimizeImagePreservesJPEGMetadata(t *testing.T) {
	exif := append([]byte{0xFF, 0xE1, 0x00, 0x0F}, []byte("Exif\x00\x00orient1")...)
	in := withSegments(encodeJPEG(t, noise(64, 64), 100), [][]byte{exif})
	require.Len(t, metadataSegments(in), 1)

	out, err := New(logger.Nop(), Options{}).Optimize("photo.jpg", in, imageProfile(t, domain.LevelLow))
	require.NoError(t, err)
	require.Less(t, len(out), len(in))

	segs := metadataSegments(out)
	require.Len(t, segs, 1)
	assert.Equal(t, exif, segs[0])

	_, err = jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
}

func TestOptimizeImageFailures(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		entry  string
		data   func(t *testing.T) []byte
		reason string
	}{
		{
			name:   "not an image",
			entry:  "broken.png",
			data:   func(*testing.T) []byte { return []byte("definitely not a png") },
			reason: "decode",
		},
		{
			name:   "truncated",
			entry:  "cut.jpg",
			data:   func(t *testing.T) []byte { return encodeJPEG(t, noise(64, 64), 90)[:200] },
			reason: "decode",
		},
		{
			name:   "too many pixels",
			opts:   Options{MaxPixels: 100},
			entry:  "big.png",
			data:   func(t *testing.T) []byte { return encodePNG(t, gradient(20, 20, 0xff)) },
			reason: "too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.data(t)
			snapshot := bytes.Clone(in)

			out, err := New(logger.Nop(), tt.opts).Optimize(tt.entry, in, imageProfile(t, domain.LevelHigh))
			require.Error(t, err)

			oe := errors.AsOptimizationError(err)
			require.NotNil(t, oe)
			assert.Equal(t, tt.reason, oe.Reason)
			assert.Equal(t, "image", oe.Category)
			assert.Equal(t, snapshot, out)
			assert.Equal(t, snapshot, in)
		})
	}
}

func TestOptimizeSkipsVectorAndAnimation(t *testing.T) {
	opt := New(logger.Nop(), Options{})
	p := imageProfile(t, domain.LevelHigh)

	for _, name := range []string{"logo.svg", "spinner.GIF"} {
		in := []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>")
		out, err := opt.Optimize(name, in, p)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestOptimizeFontAndOtherPassThrough(t *testing.T) {
	opt := New(logger.Nop(), Options{})
	table := profile.Default()

	for _, c := range []domain.Category{domain.CategoryFont, domain.CategoryOther} {
		p, err := table.Lookup(c, domain.LevelHigh)
		require.NoError(t, err)

		in := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x0b}
		out, err := opt.Optimize("Fonts/serif.ttf", in, p)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}
