package snapshot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.png", PNG, false},
		{"dir/a.PNG", PNG, false},
		{"a.webp", WebP, false},
		{"a.jpg", 0, true},
		{"noext", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error %v does not match ErrUnsupportedFormat", err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromGLPixels(t *testing.T) {
	// 1x2 image: bottom row red, top row blue, as GL returns it.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FromGLPixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(0, 0); c.B != 255 {
		t.Errorf("top pixel = %v, want blue", c)
	}
	if c := img.NRGBAAt(0, 1); c.R != 255 {
		t.Errorf("bottom pixel = %v, want red", c)
	}

	if _, err := FromGLPixels(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestDownsample(t *testing.T) {
	// Left half opaque, right half transparent.
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x < 16 {
				src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
			}
		}
	}

	tests := []struct {
		name   string
		factor int
		size   int
	}{
		{"factor 1 is identity", 1, 32},
		{"factor 2", 2, 16},
		{"factor 4", 4, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Downsample(src, tt.factor)
			if b := out.Bounds(); b.Dx() != tt.size || b.Dy() != tt.size {
				t.Fatalf("size = %v, want %d", b, tt.size)
			}
			// Opaque interior keeps its color; transparent neighbors must not
			// darken it.
			c := out.NRGBAAt(0, tt.size/2)
			if c.A < 250 || c.R < 195 || c.R > 205 {
				t.Errorf("opaque pixel = %v", c)
			}
			if c := out.NRGBAAt(tt.size-1, 0); c.A > 5 {
				t.Errorf("transparent pixel = %v", c)
			}
		})
	}
}

func TestSave(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	dir := t.TempDir()

	for _, name := range []string{"out.png", "nested/out.webp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, img); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			info, err := os.Stat(path)
			if err != nil || info.Size() == 0 {
				t.Fatalf("output missing: %v", err)
			}
		})
	}

	data, _ := os.ReadFile(filepath.Join(dir, "out.png"))
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, a := decoded.At(1, 1).RGBA(); r>>8 != 255 || a>>8 != 255 {
		t.Errorf("decoded pixel = %v", decoded.At(1, 1))
	}

	if err := Save(filepath.Join(dir, "out.gif"), img); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save(.gif) error = %v", err)
	}
}

func TestCapture_Filename(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(dir, "block", WebP)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	first := c.Filename()
	if want := filepath.Join(dir, "block_2026-01-02_03-04-05.webp"); first != want {
		t.Fatalf("Filename() = %q, want %q", first, want)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if second := c.Filename(); second != filepath.Join(dir, "block_2026-01-02_03-04-05_2.webp") {
		t.Errorf("Filename() after collision = %q", second)
	}
}
