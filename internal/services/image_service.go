package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

// Logo bounds on the statement header
const (
	LogoMaxWidth  = 300
	LogoMaxHeight = 180
)

// ImageService handles the business logo
type ImageService struct {
	storage *storage.LocalStorage
}

func NewImageService(storage *storage.LocalStorage) *ImageService {
	return &ImageService{storage: storage}
}

// SaveLogo decodes a JPG or PNG, fits it within LogoMaxWidth x LogoMaxHeight keeping
// its aspect ratio and stores it as PNG at storage.LogoPath.
func (s *ImageService) SaveLogo(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", invalid("Unsupported image format; upload a JPG or PNG.")
	}

	img, err := imaging.Decode(io.LimitReader(r, storage.MaxFileSize()), imaging.AutoOrientation(true))
	if err != nil {
		return "", invalid("Could not read image: %v", err)
	}

	logo := imaging.Fit(img, LogoMaxWidth, LogoMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, logo, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}
	if err := s.storage.Save(storage.LogoPath, buf.Bytes()); err != nil {
		return "", err
	}

	b := logo.Bounds()
	logger.Info("Logo updated", "width", b.Dx(), "height", b.Dy())
	return storage.LogoPath, nil
}

// HasLogo reports whether a logo has been uploaded
func (s *ImageService) HasLogo() bool {
	return s.storage.Exists(storage.LogoPath)
}

// DeleteLogo removes the stored logo; statements fall back to text only
func (s *ImageService) DeleteLogo() error {
	if !s.HasLogo() {
		return notFound("No logo has been uploaded.")
	}
	return s.storage.Delete(storage.LogoPath)
}
