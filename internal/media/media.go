// Package media stores uploaded files on disk and derives cropped image
// variants from them.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 88

// Card and Hero are the featured image sizes used by blog pages.
var (
	Card = Size{Name: "card", W: 800, H: 450}
	Hero = Size{Name: "hero", W: 1600, H: 900}
)

type Size struct {
	Name string
	W, H int
}

var ErrBadName = errors.New("media: invalid file name")

type Storage struct {
	root    string
	baseURL string
}

func New(root, baseURL string) *Storage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{root: root, baseURL: baseURL}
}

// Open implements fs.FS over the media root.
func (s *Storage) Open(name string) (fs.File, error) {
	return os.DirFS(s.root).Open(name)
}

func (s *Storage) Root() string { return s.root }

func (s *Storage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + name
}

func (s *Storage) path(name string) (string, error) {
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Save writes r under prefix with a random name that keeps the original
// extension, and returns the stored relative name.
func (s *Storage) Save(prefix, original string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(original))
	name := path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
	if err := s.write(name, r); err != nil {
		return "", err
	}
	log.Printf("INFO: [Media] Saved %s", name)
	return name, nil
}

func (s *Storage) write(name string, r io.Reader) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("media: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("media: create: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("media: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("media: close: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

func (s *Storage) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// VariantName is where the cropped copy of name lives.
func VariantName(name string, sz Size, focusX, focusY int) string {
	dir, file := path.Split(name)
	stem := strings.TrimSuffix(file, path.Ext(file))
	return path.Join(dir, "_variants",
		fmt.Sprintf("%s__%s_%dx%d_fx%d_fy%d.jpg", stem, sz.Name, sz.W, sz.H, clamp(focusX), clamp(focusY)))
}

// Variant returns the URL of a JPEG cropped to sz around the focus point
// (0-100 on each axis). The file is built on first use and rebuilt when
// older than the source. On any failure the original URL is returned.
func (s *Storage) Variant(name string, sz Size, focusX, focusY int) string {
	if name == "" {
		return ""
	}
	vname := VariantName(name, sz, focusX, focusY)
	if !s.stale(name, vname) {
		return s.URL(vname)
	}
	if err := s.buildVariant(name, vname, sz, focusX, focusY); err != nil {
		log.Printf("WARN: [Media] variant %s of %s: %v", sz.Name, name, err)
		return s.URL(name)
	}
	return s.URL(vname)
}

func (s *Storage) stale(name, vname string) bool {
	vp, err := s.path(vname)
	if err != nil {
		return true
	}
	vi, err := os.Stat(vp)
	if err != nil {
		return true
	}
	sp, err := s.path(name)
	if err != nil {
		return false
	}
	si, err := os.Stat(sp)
	if err != nil {
		return true
	}
	return vi.ModTime().Before(si.ModTime())
}

func (s *Storage) buildVariant(name, vname string, sz Size, focusX, focusY int) error {
	f, err := s.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	out := Fit(src, sz.W, sz.H, float64(clamp(focusX))/100, float64(clamp(focusY))/100)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return s.write(vname, &buf)
}

// Fit crops src to the w:h aspect ratio, positioning the crop window by
// cx and cy in [0,1], and scales it to w×h over a white background.
func Fit(src image.Image, w, h int, cx, cy float64) *image.RGBA {
	crop := cropRect(src.Bounds(), w, h, cx, cy)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}

func cropRect(b image.Rectangle, w, h int, cx, cy float64) image.Rectangle {
	sw, sh := b.Dx(), b.Dy()
	cw, ch := sw, sh
	target := float64(w) / float64(h)
	if float64(sw)/float64(sh) > target {
		cw = int(math.Round(float64(sh) * target))
	} else {
		ch = int(math.Round(float64(sw) / target))
	}
	x := b.Min.X + int(math.Round(float64(sw-cw)*cx))
	y := b.Min.Y + int(math.Round(float64(sh-ch)*cy))
	return image.Rect(x, y, x+cw, y+ch)
}

func clamp(v int) int {
	return max(0, min(100, v))
}
