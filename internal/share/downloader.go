package share

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"thudl/internal/models"
	"thudl/internal/progress"
)

// chunkSize is the transfer granularity. Progress advances only after a
// chunk has been written to disk.
const chunkSize = 1024

// Downloader streams manifest entries to the local filesystem, one file at
// a time in manifest order.
type Downloader struct {
	session  *Session
	reporter progress.Reporter
	logger   *zap.Logger
}

func NewDownloader(session *Session, reporter progress.Reporter, logger *zap.Logger) *Downloader {
	return &Downloader{session: session, reporter: reporter, logger: logger}
}

// DownloadAll fetches every manifest entry into saveRoot, preserving the
// remote directory layout. A single file's failure never stops the batch;
// failed entries are collected and reported alongside the successes.
func (d *Downloader) DownloadAll(ctx context.Context, key string, manifest models.Manifest, saveRoot string) ([]models.DownloadItem, []models.FailedItem) {
	if _, err := os.Stat(saveRoot); err == nil {
		d.logger.Warn("save directory already exists, files may be overwritten",
			zap.String("path", saveRoot))
	}

	var items []models.DownloadItem
	var failed []models.FailedItem
	for i, entry := range manifest {
		dest := filepath.Join(saveRoot, filepath.FromSlash(entry.RelPath()))
		d.reporter.SetLabel(fmt.Sprintf("[%d/%d] %s", i+1, len(manifest), filepath.Base(dest)))

		if err := d.downloadOne(ctx, key, entry, dest); err != nil {
			d.logger.Error("download failed",
				zap.String("path", dest),
				zap.Error(err))
			failed = append(failed, models.FailedItem{
				RemotePath: entry.Path(),
				LocalPath:  dest,
				Error:      err.Error(),
			})
			continue
		}
		items = append(items, models.DownloadItem{
			RemotePath:   entry.Path(),
			LocalPath:    dest,
			Size:         entry.Size,
			LastModified: entry.LastModified,
		})
	}
	d.reporter.Finish()
	d.logger.Info("download finished",
		zap.Int("downloaded", len(items)),
		zap.Int("failed", len(failed)))
	return items, failed
}

// downloadOne streams a single file to dest. The response body and the
// destination handle are both released before the next entry starts.
func (d *Downloader) downloadOne(ctx context.Context, key string, entry models.DirEntry, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dest, err)
	}

	body, err := d.session.OpenDownload(ctx, key, entry.Path())
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	buf := make([]byte, chunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			written, writeErr := out.Write(buf[:n])
			d.reporter.Advance(int64(written))
			if writeErr != nil {
				return fmt.Errorf("write %s: %w", dest, writeErr)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w: %v", entry.Path(), ErrTransfer, readErr)
		}
	}
}
