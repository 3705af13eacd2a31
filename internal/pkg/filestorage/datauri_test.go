package filestorage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/scedev/parkpermit/internal/pkg/apperrors"
)

func TestDecodeDataURI_RoundTrip(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(original)

	data, ext, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if ext != "png" {
		t.Fatalf("extension = %q, want %q", ext, "png")
	}
	if !bytes.Equal(data, original) {
		t.Fatalf("decoded bytes differ from original")
	}
}

func TestDecodeDataURI_SubtypeBecomesExtension(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	tests := []struct {
		mime string
		ext  string
	}{
		{"image/jpeg", "jpeg"},
		{"image/svg+xml", "svg+xml"},
		{"application/pdf", "pdf"},
	}

	for _, tt := range tests {
		_, ext, err := DecodeDataURI("data:" + tt.mime + ";base64," + payload)
		if err != nil {
			t.Fatalf("DecodeDataURI(%s): %v", tt.mime, err)
		}
		if ext != tt.ext {
			t.Fatalf("extension for %s = %q, want %q", tt.mime, ext, tt.ext)
		}
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no prefix", "aGVsbG8="},
		{"missing base64 marker", "data:image/png,aGVsbG8="},
		{"missing payload", "data:image/png;base64,"},
		{"no subtype", "data:image;base64,aGVsbG8="},
		{"bad base64", "data:image/png;base64,@@@not-base64@@@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURI(tt.input)
			if !errors.Is(err, apperrors.ErrInvalidEncoding) {
				t.Fatalf("DecodeDataURI(%q) error = %v, want ErrInvalidEncoding", tt.input, err)
			}
		})
	}
}

func TestSaveLicense(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLicenseStorage(dir, "")
	if err != nil {
		t.Fatalf("NewLicenseStorage: %v", err)
	}

	content := []byte("license bytes")
	fileName, err := ls.SaveLicense(content, "123456789", "png")
	if err != nil {
		t.Fatalf("SaveLicense: %v", err)
	}

	pattern := regexp.MustCompile(`^license-123456789-\d+\.png$`)
	if !pattern.MatchString(fileName) {
		t.Fatalf("filename %q does not match license-<student_id>-<epoch_ms>.<ext>", fileName)
	}

	written, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !bytes.Equal(written, content) {
		t.Fatalf("saved content differs from input")
	}
}

func TestRemove_Idempotent(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLicenseStorage(dir, "")
	if err != nil {
		t.Fatalf("NewLicenseStorage: %v", err)
	}

	fileName, err := ls.SaveLicense([]byte("x"), "123456789", "jpeg")
	if err != nil {
		t.Fatalf("SaveLicense: %v", err)
	}

	if err := ls.Remove(fileName); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Second removal of a missing file succeeds.
	if err := ls.Remove(fileName); err != nil {
		t.Fatalf("Remove (second): %v", err)
	}
	// Empty filename is a no-op.
	if err := ls.Remove(""); err != nil {
		t.Fatalf("Remove(\"\"): %v", err)
	}
}
