// Package snapshot writes viewport images to disk as PNG or WebP.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned for an output extension with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output encoding.
type Format int

const (
	PNG Format = iota
	WebP
)

// String returns the file extension without the dot.
func (f Format) String() string {
	if f == WebP {
		return "webp"
	}
	return "png"
}

// FormatFromPath picks the encoder from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".webp":
		return WebP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	}
	return nil
}

// Save writes img to path, choosing the encoder by extension and creating
// the parent directory.
func Save(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := Encode(file, img, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FromGLPixels converts RGBA rows read back from OpenGL, bottom row first,
// into an image with the top row first.
func FromGLPixels(pixels []byte, width, height int) (*image.NRGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// Downsample shrinks img by an integer factor with premultiplied-alpha
// CatmullRom filtering, so transparent edges do not pick up dark halos.
// A factor below 2 returns img unchanged.
func Downsample(img *image.NRGBA, factor int) *image.NRGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	w, h := max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 0 {
			inv := 255 / a
			out.Pix[i] = clamp8(float64(dst.Pix[i]) * inv)
			out.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Capture names and writes timestamped snapshots into a directory.
type Capture struct {
	OutputDir string
	Prefix    string
	Format    Format

	now func() time.Time
}

// NewCapture creates a capture writing prefix_<timestamp>.<format> files.
func NewCapture(outputDir, prefix string, f Format) *Capture {
	return &Capture{OutputDir: outputDir, Prefix: prefix, Format: f, now: time.Now}
}

// Filename returns the path the next capture would be written to. A name
// already taken gets a numeric suffix.
func (c *Capture) Filename() string {
	stamp := c.now().Format("2006-01-02_15-04-05")
	base := filepath.Join(c.OutputDir, fmt.Sprintf("%s_%s", c.Prefix, stamp))

	name := base + "." + c.Format.String()
	for i := 2; fileExists(name); i++ {
		name = fmt.Sprintf("%s_%d.%s", base, i, c.Format)
	}
	return name
}

// Save writes img under a fresh name and returns it.
func (c *Capture) Save(img image.Image) (string, error) {
	name := c.Filename()
	if err := Save(name, img); err != nil {
		return "", err
	}
	return name, nil
}

// SaveGLPixels flips GL read-back pixels and writes them.
func (c *Capture) SaveGLPixels(pixels []byte, width, height int) (string, error) {
	img, err := FromGLPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
