package filestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scedev/parkpermit/internal/pkg/logger"
)

// LicenseStorage handles saving decoded license images to the local filesystem.
type LicenseStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL to access the stored files (optional, for generating full URLs)
}

// NewLicenseStorage creates a new LicenseStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLicenseStorage(basePath, baseURL string) (*LicenseStorage, error) {
	// Ensure the base path exists
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("License storage directory ensured")

	return &LicenseStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// BasePath returns the storage root, for static file serving.
func (ls *LicenseStorage) BasePath() string {
	return ls.basePath
}

// SaveLicense writes decoded image bytes under a generated filename of the
// form license-<studentID>-<epochMillis>.<ext> and returns that filename for
// storage as a foreign reference. Two submissions for the same student in the
// same millisecond would collide; in practice they do not.
func (ls *LicenseStorage) SaveLicense(data []byte, studentID, extension string) (string, error) {
	fileName := fmt.Sprintf("license-%s-%d.%s", studentID, time.Now().UnixMilli(), extension)
	dstPath := filepath.Join(ls.basePath, fileName)

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write license image")
		return "", fmt.Errorf("failed to save license image: %w", err)
	}

	logger.Info().Str("saved_as", fileName).Int("bytes", len(data)).Msg("License image saved")
	return fileName, nil
}

// SaveAttachment writes a decoded request attachment under a generated
// filename of the form attachment-<studentID>-<epochNanos>.<ext>. Nanosecond
// resolution keeps the names of several attachments saved in one request
// distinct.
func (ls *LicenseStorage) SaveAttachment(data []byte, studentID, extension string) (string, error) {
	fileName := fmt.Sprintf("attachment-%s-%d.%s", studentID, time.Now().UnixNano(), extension)
	dstPath := filepath.Join(ls.basePath, fileName)

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write attachment")
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}

	logger.Info().Str("saved_as", fileName).Int("bytes", len(data)).Msg("Attachment saved")
	return fileName, nil
}

// Remove deletes a stored license image. It is idempotent: removing a file
// that does not exist is a successful no-op, so the compensation path after a
// failed record insert can call it unconditionally.
func (ls *LicenseStorage) Remove(fileName string) error {
	if fileName == "" {
		return nil // Nothing to delete
	}

	// Only the filename portion is ever stored; refuse anything else.
	base := filepath.Base(fileName)
	if base == "" || base == "." || base == "/" {
		return fmt.Errorf("invalid file name: %s", fileName)
	}

	physicalPath := filepath.Join(ls.basePath, base)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}

// URL returns the accessible URL for a stored filename, or the bare filename
// when no base URL is configured.
func (ls *LicenseStorage) URL(fileName string) string {
	if ls.baseURL == "" {
		return fileName
	}
	return strings.TrimRight(ls.baseURL, "/") + "/" + fileName
}
