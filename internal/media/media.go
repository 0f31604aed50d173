package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUpload wraps every failure to read or store an uploaded file.
var ErrUpload = errors.New("failed to upload image")

// Upload is one user-supplied file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Ingestor turns an upload into a reference usable as an article imageUrl.
// No type or size checks are done and every upload is stored as a new blob.
type Ingestor interface {
	Ingest(ctx context.Context, u Upload) (string, error)
}

// DataURIIngestor inlines the file as a base64 data URI.
type DataURIIngestor struct{}

func NewDataURIIngestor() DataURIIngestor { return DataURIIngestor{} }

func (DataURIIngestor) Ingest(_ context.Context, u Upload) (string, error) {
	if u.Body == nil {
		return "", fmt.Errorf("%w: empty body", ErrUpload)
	}
	b, err := io.ReadAll(u.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUpload, u.Filename, err)
	}
	return "data:" + contentType(u.ContentType, b) + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// contentType keeps a specific declared type and otherwise sniffs the bytes.
func contentType(declared string, b []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		if i := strings.IndexByte(declared, ';'); i >= 0 {
			declared = strings.TrimSpace(declared[:i])
		}
		return declared
	}
	mt := mimetype.Detect(b).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}
