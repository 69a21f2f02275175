package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/domain"
)

func TestWriteCreatesDirAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "daily")
	w := NewFileWriter(dir, nil)

	files := []domain.ReportFile{
		{Filename: "nature_daily_report_20250627.md", Payload: []byte("first")},
		{Filename: "nature_daily_report_20250627.json", Payload: []byte("{}")},
	}
	paths, err := w.Write(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	files[0].Payload = []byte("second")
	_, err = w.Write(context.Background(), files[:1])
	require.NoError(t, err)

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriteRejectsPathTraversal(t *testing.T) {
	w := NewFileWriter(t.TempDir(), nil)

	paths, err := w.Write(context.Background(), []domain.ReportFile{
		{Filename: "ok.md", Payload: []byte("x")},
		{Filename: "../escape.md", Payload: []byte("x")},
	})
	require.Error(t, err)
	assert.Len(t, paths, 1)
}

func TestWriteContinuesAfterFailedFile(t *testing.T) {
	dir := t.TempDir()
	// A directory in the way makes WriteFile fail for that name only.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nature_daily_report_20250627.md"), 0o755))
	w := NewFileWriter(dir, nil)

	paths, err := w.Write(context.Background(), []domain.ReportFile{
		{Filename: "nature_daily_report_20250627.md", Payload: []byte("md")},
		{Filename: "nature_daily_report_20250627.html", Payload: []byte("html")},
		{Filename: "nature_daily_report_20250627.json", Payload: []byte("{}")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nature_daily_report_20250627.md")
	assert.Equal(t, []string{
		filepath.Join(dir, "nature_daily_report_20250627.html"),
		filepath.Join(dir, "nature_daily_report_20250627.json"),
	}, paths)

	got, readErr := os.ReadFile(paths[1])
	require.NoError(t, readErr)
	assert.Equal(t, "{}", string(got))
}
