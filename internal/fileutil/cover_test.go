package fileutil

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngServer(t *testing.T, width, height int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for x := range width {
			img.Set(x, 0, color.RGBA{R: 200, A: 255})
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDownloadCover_ResizesWideImages(t *testing.T) {
	srv, _ := pngServer(t, 800, 1200)
	dir := t.TempDir()

	res, err := DownloadCover(context.Background(), srv.Client(), CoverDownloadOptions{
		URL:       srv.URL + "/cover.png",
		OutputDir: dir,
		Filename:  BuildCoverFilename("Dracula: A Novel"),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Downloaded)
	assert.Equal(t, "attachments/Dracula - A Novel - cover.jpg", res.RelativePath)
	assert.Equal(t, filepath.Join(dir, "attachments", "Dracula - A Novel - cover.jpg"), res.LocalPath)

	img, err := imaging.Open(res.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultCoverWidth, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestDownloadCover_KeepsNarrowImages(t *testing.T) {
	srv, _ := pngServer(t, 120, 180)
	dir := t.TempDir()

	res, err := DownloadCover(context.Background(), srv.Client(), CoverDownloadOptions{
		URL:       srv.URL,
		OutputDir: dir,
		Filename:  "small.jpg",
	})
	require.NoError(t, err)

	img, err := imaging.Open(res.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestDownloadCover_SkipsExisting(t *testing.T) {
	srv, hits := pngServer(t, 50, 50)
	dir := t.TempDir()
	existing := filepath.Join(dir, AttachmentsDir, "c.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	opts := CoverDownloadOptions{URL: srv.URL, OutputDir: dir, Filename: "c.jpg"}
	res, err := DownloadCover(context.Background(), srv.Client(), opts)
	require.NoError(t, err)
	assert.False(t, res.Downloaded)
	assert.Equal(t, int32(0), hits.Load())

	opts.UpdateCovers = true
	res, err = DownloadCover(context.Background(), srv.Client(), opts)
	require.NoError(t, err)
	assert.True(t, res.Downloaded)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownloadCover_EmptyURL(t *testing.T) {
	res, err := DownloadCover(context.Background(), http.DefaultClient, CoverDownloadOptions{OutputDir: t.TempDir()})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestDownloadCover_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("not an image"))
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()

	_, err := DownloadCover(context.Background(), srv.Client(), CoverDownloadOptions{URL: srv.URL + "/missing", OutputDir: dir, Filename: "a.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")

	_, err = DownloadCover(context.Background(), srv.Client(), CoverDownloadOptions{URL: srv.URL + "/garbage", OutputDir: dir, Filename: "b.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assert.False(t, FileExists(filepath.Join(dir, AttachmentsDir, "b.jpg")))
}
