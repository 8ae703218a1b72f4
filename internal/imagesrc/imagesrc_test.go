package imagesrc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func TestDecodePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.png")
	writePNG(t, path, 3, 2, color.NRGBA{R: 255, A: 255})

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", img.Width, img.Height)
	}
	if len(img.Pix) != 3*2*4 {
		t.Fatalf("len(Pix) = %d, want 24", len(img.Pix))
	}
	if diff := cmp.Diff([]byte{255, 0, 0, 255}, img.Pix[:4]); diff != "" {
		t.Fatalf("first pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBytes(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 1, color.NRGBA{G: 200, B: 100, A: 255})
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src); err != nil {
		t.Fatalf("bmp.Encode() error: %v", err)
	}

	img, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes() error: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", img.Width, img.Height)
	}
	if diff := cmp.Diff([]byte{0, 200, 100, 255}, img.Pix[12:16]); diff != "" {
		t.Fatalf("pixel (1,1) mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeBytes([]byte("not an image"))
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("DecodeBytes(garbage) error = %v, want *DecodeError", err)
	}
	if decErr.Path != "" {
		t.Fatalf("DecodeError.Path = %q, want empty", decErr.Path)
	}
}

func TestDecodeErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Decode(filepath.Join(dir, "missing.png"))
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Decode(missing) error = %v, want *DecodeError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Decode(missing) should wrap os.ErrNotExist, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Decode(garbage)
	if !errors.As(err, &decErr) || decErr.Path != garbage {
		t.Fatalf("Decode(garbage) error = %v, want *DecodeError for %s", err, garbage)
	}
}

func TestFitDownscalesKeepingAspect(t *testing.T) {
	img := Solid(400, 100, 1, 2, 3)
	got := Fit(img, 100)
	if got.Width != 100 || got.Height != 25 {
		t.Fatalf("Fit() = %dx%d, want 100x25", got.Width, got.Height)
	}
	if len(got.Pix) != 100*25*4 {
		t.Fatalf("len(Pix) = %d", len(got.Pix))
	}
	if Fit(img, 0) != img || Fit(img, 400) != img {
		t.Fatal("Fit() should return the input when already within bounds")
	}
}

func TestSolid(t *testing.T) {
	img := Solid(2, 1, 30, 30, 40)
	if diff := cmp.Diff([]byte{30, 30, 40, 255, 30, 30, 40, 255}, img.Pix); diff != "" {
		t.Fatalf("Solid() mismatch (-want +got):\n%s", diff)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 1, 1, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "a.PNG"), 1, 1, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "sub", "c.png"), 1, 1, color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	flat, err := Scan(dir, false)
	if err != nil {
		t.Fatalf("Scan(flat) error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("Scan(flat) mismatch (-want +got):\n%s", diff)
	}

	deep, err := Scan(dir, true)
	if err != nil {
		t.Fatalf("Scan(recursive) error: %v", err)
	}
	want = append(want, filepath.Join(dir, "sub", "c.png"))
	if diff := cmp.Diff(want, deep); diff != "" {
		t.Fatalf("Scan(recursive) mismatch (-want +got):\n%s", diff)
	}

	first, err := Resolve(dir)
	if err != nil || first != filepath.Join(dir, "a.PNG") {
		t.Fatalf("Resolve() = %q, %v", first, err)
	}
	missing := filepath.Join(dir, "missing.png")
	if got, err := Resolve(missing); err != nil || got != missing {
		t.Fatalf("Resolve(missing) = %q, %v; want passthrough", got, err)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	_, err := Scan(t.TempDir(), true)
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("Scan(empty) error = %v, want ErrNoImages", err)
	}
}
