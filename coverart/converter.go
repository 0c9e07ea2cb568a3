// Package coverart renders track artwork as ASCII for the session panel.
package coverart

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qeesung/image2ascii/convert"
)

// Converter turns an artwork location (file path or URL) into ASCII art
type Converter struct {
	httpClient *http.Client
	converter  *convert.ImageConverter
	width      int
	height     int
}

// NewConverter creates a converter producing width x height characters
func NewConverter(width, height int) *Converter {
	if width <= 0 {
		width = 25
	}
	if height <= 0 {
		height = 12
	}
	return &Converter{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		converter: convert.NewImageConverter(),
		width:     width,
		height:    height,
	}
}

// Render converts the artwork at location. The placeholder is returned
// alongside any error, and on its own when location is empty.
func (c *Converter) Render(ctx context.Context, location string) (string, error) {
	if location == "" {
		return Placeholder, nil
	}

	r, err := c.open(ctx, location)
	if err != nil {
		return Placeholder, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return Placeholder, errors.Wrap(err, "decode artwork")
	}

	opts := convert.DefaultOptions
	opts.FixedWidth = c.width
	opts.FixedHeight = c.height
	opts.Colored = false // tview colour tags, not ANSI

	return c.converter.Image2ASCIIString(img, &opts), nil
}

func (c *Converter) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, errors.Wrap(err, "open artwork")
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download artwork")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("download artwork: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Placeholder is shown when a track has no usable artwork
const Placeholder = `[darkgray]┌─────────────────────────┐
[darkgray]│                         │
[darkgray]│                         │
[darkgray]│          ~  ~  ~        │
[darkgray]│        breathe in       │
[darkgray]│        breathe out      │
[darkgray]│          ~  ~  ~        │
[darkgray]│                         │
[darkgray]│                         │
[darkgray]└─────────────────────────┘`
