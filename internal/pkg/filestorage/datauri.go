package filestorage

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/scedev/parkpermit/internal/pkg/apperrors"
)

// dataURIPattern matches `data:<mime-type>;base64,<payload>` submissions.
var dataURIPattern = regexp.MustCompile(`^data:([A-Za-z-+/]+);base64,(.+)$`)

// DecodeDataURI decodes a base64 data URI into raw bytes plus a file
// extension. The extension is the MIME subtype verbatim (the text after the
// slash); anything that does not match the pattern fails with
// apperrors.ErrInvalidEncoding.
func DecodeDataURI(dataURI string) ([]byte, string, error) {
	matches := dataURIPattern.FindStringSubmatch(dataURI)
	if len(matches) != 3 {
		return nil, "", apperrors.ErrInvalidEncoding
	}

	mimeType := matches[1]
	parts := strings.SplitN(mimeType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, "", fmt.Errorf("%w: mime type %q has no subtype", apperrors.ErrInvalidEncoding, mimeType)
	}
	extension := parts[1]

	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidEncoding, err)
	}

	return data, extension, nil
}
