package chat

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotImage is returned when a selected file does not carry an image
// media type. The caller surfaces it to the user and mutates no state.
var ErrNotImage = fmt.Errorf("selected file is not an image")

// LoadImagePart reads a local file and validates that it is an image.
// The media type is sniffed from the file contents, falling back to the
// file extension for formats the sniffer does not know.
func LoadImagePart(path string) (*ImagePart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		byExt := mime.TypeByExtension(filepath.Ext(path))
		if !strings.HasPrefix(byExt, "image/") {
			return nil, fmt.Errorf("%w: %s detected as %s", ErrNotImage, path, mimeType)
		}
		mimeType = byExt
	}

	return &ImagePart{
		MIMEType: mimeType,
		Data:     data,
		Preview:  path,
	}, nil
}
