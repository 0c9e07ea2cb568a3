package coverart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 16)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRenderEmptyLocation(t *testing.T) {
	got, err := NewConverter(0, 0).Render(context.Background(), "")
	if err != nil || got != Placeholder {
		t.Fatalf("Render(\"\") = %q, %v; want placeholder", got, err)
	}
}

func TestRenderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.png")
	if err := os.WriteFile(path, testPNG(t), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewConverter(8, 4).Render(context.Background(), path)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got == Placeholder || strings.TrimSpace(got) == "" {
		t.Fatalf("expected ASCII art, got %q", got)
	}
}

func TestRenderURL(t *testing.T) {
	data := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	c := NewConverter(8, 4)
	if got, err := c.Render(context.Background(), srv.URL+"/art.png"); err != nil || got == Placeholder {
		t.Fatalf("Render(url) = %q, %v", got, err)
	}
	if got, err := c.Render(context.Background(), srv.URL+"/missing.png"); err == nil || got != Placeholder {
		t.Fatalf("Render(missing) = %q, %v; want placeholder and error", got, err)
	}
}

func TestRenderBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewConverter(0, 0).Render(context.Background(), path)
	if err == nil || got != Placeholder {
		t.Fatalf("Render(broken) = %q, %v; want placeholder and error", got, err)
	}
}
