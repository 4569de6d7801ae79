package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrTooLarge reports a response body larger than the configured limit.
var ErrTooLarge = errors.New("response body exceeds size limit")

// Downloader fetches a remote file and stores it locally.
type Downloader struct {
	client   *http.Client
	maxBytes int64
}

// NewDownloader creates a Downloader with the given per-request timeout and
// body size limit. A nil client uses a fresh http.Client.
func NewDownloader(client *http.Client, timeout time.Duration, maxBytes int64) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	if timeout > 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}
	return &Downloader{client: client, maxBytes: maxBytes}
}

// Download fetches url and writes the body to dest, replacing any previous
// copy. The file is written to a temporary sibling first so a failed
// download never leaves a truncated dest behind.
func (d *Downloader) Download(ctx context.Context, url, dest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := readAllWithLimit(resp.Body, d.maxBytes)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replace %s: %w", dest, err)
	}
	return body, nil
}

func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(&io.LimitedReader{R: r, N: limit + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
