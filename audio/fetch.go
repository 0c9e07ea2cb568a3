package audio

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Fetcher opens a locator for decoding. Remote locators are downloaded to
// a temporary file first because the decoders want to seek.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher whose downloads give up after timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source is an opened locator. Closing it removes any temporary file.
type Source struct {
	*os.File
	Ext     string // lower-case extension including the dot
	tempDir string
}

// Close closes the file and removes the download directory if there is one
func (s *Source) Close() error {
	err := s.File.Close()
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Open returns a seekable source for locator
func (f *Fetcher) Open(ctx context.Context, locator string) (*Source, error) {
	if !isRemote(locator) {
		file, err := os.Open(locator)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", locator)
		}
		return &Source{File: file, Ext: strings.ToLower(filepath.Ext(locator))}, nil
	}
	return f.download(ctx, locator)
}

func (f *Fetcher) download(ctx context.Context, locator string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", locator)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download %s: unexpected status %d", locator, resp.StatusCode)
	}

	ext := remoteExt(locator, resp.Header.Get("Content-Type"))

	dir, err := os.MkdirTemp("", "zencli-")
	if err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	file, err := os.Create(filepath.Join(dir, "track"+ext))
	if err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "create temp file")
	}

	src := &Source{File: file, Ext: ext, tempDir: dir}
	if _, err := io.Copy(file, resp.Body); err != nil {
		src.Close()
		return nil, errors.Wrapf(err, "download %s", locator)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, errors.Wrap(err, "rewind download")
	}
	return src, nil
}

// remoteExt prefers the URL path extension and falls back to the
// response content type
func remoteExt(locator, contentType string) string {
	if u, err := url.Parse(locator); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			return ext
		}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg", "audio/vorbis", "application/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	}
	return ""
}
