package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage areas under the base path
const (
	DirImports    = "imports"
	DirStatements = "statements"
	DirBranding   = "branding"
)

// LogoPath is the fixed location of the business logo
const LogoPath = DirBranding + "/logo.png"

// LocalStorage handles file storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// UploadFromBytes saves bytes under subDir/YYYY/MM with a generated name
func (s *LocalStorage) UploadFromBytes(data []byte, filename string, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	filePath := filepath.Join(dir, generateID()+ext)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return filepath.ToSlash(relPath), nil
}

// Save writes data at a fixed relative path, replacing any previous file
func (s *LocalStorage) Save(relativePath string, data []byte) error {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tmp, filePath)
}

// Download returns a file for reading
func (s *LocalStorage) Download(relativePath string) (*os.File, error) {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(filePath)
}

// Read returns the whole file
func (s *LocalStorage) Read(relativePath string) ([]byte, error) {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filePath)
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(filePath)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// GetSize returns the size of a file in bytes
func (s *LocalStorage) GetSize(relativePath string) (int64, error) {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// resolve joins a relative path to the base and rejects paths that escape it
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", relativePath)
	}
	return filepath.Join(s.basePath, clean), nil
}

// generateID names stored files so uploads with the same name never collide
func generateID() string {
	return uuid.NewString()
}

// ValidImportExtensions returns the spreadsheet formats accepted for import
func ValidImportExtensions() map[string]bool {
	return map[string]bool{
		".csv":  true,
		".xlsx": true,
	}
}

// ValidImageTypes returns allowed MIME types for the logo upload
func ValidImageTypes() map[string]bool {
	return map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
	}
}

// MaxFileSize returns the maximum allowed upload size (10MB)
func MaxFileSize() int64 {
	return 10 * 1024 * 1024
}

// IsValidImageType checks if the content type is an allowed image
func IsValidImageType(contentType string) bool {
	return ValidImageTypes()[contentType]
}
