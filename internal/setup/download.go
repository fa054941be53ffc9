package setup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/logwise-ai/logwise/internal/domain"
)

// ProgressFunc receives download progress: a status string and a 0-100
// percentage (negative when the server did not report a length).
type ProgressFunc func(status string, pct float64)

// downloadFile streams url to dest with resume support: a partial
// .tmp file next to dest is continued via a Range request, and the
// finished file is moved into place atomically.
func downloadFile(ctx context.Context, url, dest string, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmpPath := dest + ".tmp"

	var startByte int64
	if stat, err := os.Stat(tmpPath); err == nil {
		startByte = stat.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "LogWise/0.1")
	if startByte > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
		if progress != nil {
			progress(fmt.Sprintf("resuming from %s", domain.HumanSize(startByte)), -1)
		}
	}

	client := &http.Client{Timeout: 0} // no timeout for large downloads
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("download failed: HTTP %d from %s", resp.StatusCode, url)
	}

	var totalSize int64
	if resp.ContentLength > 0 {
		totalSize = resp.ContentLength + startByte
	}

	flags := os.O_CREATE | os.O_WRONLY
	if startByte > 0 && resp.StatusCode == http.StatusPartialContent {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
		startByte = 0
	}
	f, err := os.OpenFile(tmpPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	buf := make([]byte, 256*1024)
	downloaded := startByte
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				f.Close()
				return fmt.Errorf("write file: %w", err)
			}
			downloaded += int64(n)
			if progress != nil {
				pct := -1.0
				if totalSize > 0 {
					pct = float64(downloaded) / float64(totalSize) * 100
				}
				progress(fmt.Sprintf("downloading %s / %s",
					domain.HumanSize(downloaded), domain.HumanSize(totalSize)), pct)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			return fmt.Errorf("download interrupted: %w — rerun setup to resume", readErr)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move download into place: %w", err)
	}
	if progress != nil {
		progress("done", 100)
	}
	return nil
}
