package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/epubtest"
)

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"shrink"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "shrink"`)
}

func TestCompressCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "moby.epub")
	require.NoError(t, os.WriteFile(in, epubtest.Book(t), 0o644))

	out := filepath.Join(dir, "out")
	require.NoError(t, run([]string{"compress", "-level", "high", "-o", out, "-report", "json", in}))

	data, err := os.ReadFile(filepath.Join(out, "moby-compressed.epub"))
	require.NoError(t, err)
	assert.Equal(t, epubtest.Names(t, epubtest.Book(t)), epubtest.Names(t, data))
}

func TestCompressCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.epub")
	require.NoError(t, os.WriteFile(in, []byte("plain text"), 0o644))

	err := run([]string{"compress", "-o", filepath.Join(dir, "out"), in})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 books failed")
}

func TestCompressCommandRejectsArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no files", []string{"compress"}},
		{"bad level", []string{"compress", "-level", "max", "a.epub"}},
		{"bad report", []string{"compress", "-report", "xml", "a.epub"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.args))
		})
	}
}

func TestWriteReport(t *testing.T) {
	res := &domain.BatchResult{
		BatchID: "b1",
		Level:   domain.LevelLow,
		Items: []domain.BatchItem{
			{OriginalName: "a.epub", CompressedName: "a-compressed.epub", Status: domain.BatchSuccess},
		},
		SuccessCount: 1,
	}

	var yml bytes.Buffer
	require.NoError(t, writeReport(&yml, "yaml", res))
	assert.Contains(t, yml.String(), "batchId: b1")
	assert.Contains(t, yml.String(), "compressedName: a-compressed.epub")

	var js bytes.Buffer
	require.NoError(t, writeReport(&js, "json", res))
	assert.Contains(t, js.String(), `"successCount": 1`)
}
