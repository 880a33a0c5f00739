package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultCoverWidth is the width covers are scaled down to.
const DefaultCoverWidth = 400

// AttachmentsDir is where covers go, relative to the notes.
const AttachmentsDir = "attachments"

// HTTPDoer is the subset of http.Client used for downloads.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CoverDownloadOptions describes one cover download.
type CoverDownloadOptions struct {
	URL       string
	OutputDir string
	Filename  string
	// MaxWidth defaults to DefaultCoverWidth. Narrower images are not upscaled.
	MaxWidth int
	// UpdateCovers re-downloads covers that already exist.
	UpdateCovers bool
}

// CoverDownloadResult locates a downloaded cover.
type CoverDownloadResult struct {
	Downloaded   bool
	LocalPath    string
	RelativePath string
	Filename     string
}

// DownloadCover fetches a cover image, scales it down and stores it as JPEG
// under OutputDir/attachments. An empty URL yields a nil result.
func DownloadCover(ctx context.Context, client HTTPDoer, opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, nil
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultCoverWidth
	}

	result := &CoverDownloadResult{
		LocalPath:    filepath.Join(opts.OutputDir, AttachmentsDir, opts.Filename),
		RelativePath: filepath.ToSlash(filepath.Join(AttachmentsDir, opts.Filename)),
		Filename:     opts.Filename,
	}
	if FileExists(result.LocalPath) && !opts.UpdateCovers {
		slog.Debug("Cover already exists, skipping download", "path", result.LocalPath)
		return result, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}
	if img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(result.LocalPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}
	if err := imaging.Save(img, result.LocalPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to write cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", result.LocalPath)
	result.Downloaded = true
	return result, nil
}

// BuildCoverFilename returns "<title> - cover.jpg".
func BuildCoverFilename(title string) string {
	return SanitizeFilename(title) + " - cover.jpg"
}
