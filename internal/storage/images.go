package storage

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Media subdirectories and the bounding boxes images are shrunk to.
const (
	PostImagesDir    = "post_images"
	AvatarsDir       = "avatars"
	ProductImagesDir = "product_images"

	AvatarMaxSide  = 300
	ProductMaxSide = 800
)

var (
	ErrNotImage     = errors.New("file must be an image")
	ErrTooLarge     = errors.New("image is too large")
	ErrBadExtension = errors.New("image must be .jpg, .jpeg, .png or .gif")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageStore keeps uploaded images on local disk under root.
// Stored paths are relative to root and use forward slashes.
type ImageStore struct {
	root     string
	maxBytes int64
}

func NewImageStore(root string, maxBytes int64) *ImageStore {
	return &ImageStore{root: root, maxBytes: maxBytes}
}

// SaveUpload validates and stores an uploaded image under dir. When maxSide is
// positive, images larger than maxSide on either side are shrunk to fit,
// keeping the aspect ratio.
func (s *ImageStore) SaveUpload(header *multipart.FileHeader, dir string, maxSide int) (string, error) {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", ErrNotImage
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return s.save(file, header.Filename, dir, maxSide)
}

// SaveFile stores an image from the local filesystem, as the manage CLI does.
func (s *ImageStore) SaveFile(src, dir string, maxSide int) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return "", ErrTooLarge
	}

	file, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	return s.save(file, filepath.Base(src), dir, maxSide)
}

func (s *ImageStore) save(r io.Reader, filename, dir string, maxSide int) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrBadExtension
	}

	rel := path.Join(dir, uuid.NewString()+ext)
	dst := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	if maxSide <= 0 {
		if err := copyTo(dst, r); err != nil {
			return "", err
		}
		return rel, nil
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrNotImage
	}
	img = Thumbnail(img, maxSide)
	if err := imaging.Save(img, dst); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return rel, nil
}

// Thumbnail shrinks img to fit a maxSide square; smaller images are returned as is.
func Thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

func copyTo(dst string, r io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("write image: %w", err)
	}
	return out.Close()
}

// Remove deletes a stored file. Empty paths and missing files are ignored.
func (s *ImageStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	if err := os.Remove(s.Path(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Path maps a stored path to its location on disk.
func (s *ImageStore) Path(rel string) string {
	clean := path.Clean("/" + rel)
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

// URL is where the router serves a stored path.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(rel, "/")
}
