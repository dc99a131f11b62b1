package compression

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZstd(t *testing.T) *Zstd {
	t.Helper()

	z, err := NewZstd(DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, z.Close()) })
	return z
}

func TestZstdRoundTrip(t *testing.T) {
	z := newZstd(t)

	data := bytes.Repeat([]byte("chapter text "), 512)
	out, ok, err := z.Compress(data)
	require.NoError(t, err)
	require.True(t, ok)
	require.Less(t, len(out), len(data))

	restored, err := z.Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, restored)
}

func TestZstdKeepsRawData(t *testing.T) {
	z := newZstd(t)

	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"small", []byte("tiny")},
		{"incompressible", random},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok, err := z.Compress(tt.data)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, tt.data, out)
		})
	}
}

func TestZstdRejectsGarbage(t *testing.T) {
	_, err := newZstd(t).Decompress([]byte("not a frame"))
	require.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default", DefaultOptions(), false},
		{"best", Options{Level: BestLevel}, false},
		{"level zero", Options{Level: 0}, true},
		{"level too high", Options{Level: BestLevel + 1}, true},
		{"negative concurrency", Options{Level: DefaultLevel, Concurrency: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
