package record

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidDataURL = errors.New("invalid data url")

// NewDocument wraps raw file content as a base64 data URL document.
func NewDocument(name string, category DocumentCategory, contentType string, content []byte, now time.Time) (MedicalDocument, error) {
	if strings.TrimSpace(name) == "" {
		return MedicalDocument{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if !category.Valid() {
		return MedicalDocument{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	fileType, err := fileTypeOf(contentType)
	if err != nil {
		return MedicalDocument{}, err
	}
	return MedicalDocument{
		ID:         uuid.NewString(),
		Name:       name,
		Category:   category,
		FileType:   fileType,
		FileURL:    "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content),
		UploadDate: now.UTC().Format(time.RFC3339),
		FileSize:   int64(len(content)),
	}, nil
}

func fileTypeOf(contentType string) (FileType, error) {
	switch {
	case contentType == "application/pdf":
		return FileTypePDF, nil
	case strings.HasPrefix(contentType, "image/"):
		return FileTypeImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFileType, contentType)
}

// Content decodes the document's data URL into its media type and bytes.
func (d MedicalDocument) Content() (string, []byte, error) {
	rest, ok := strings.CutPrefix(d.FileURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mediaType, []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mediaType, data, nil
}

// FilterDocuments returns documents in category, or all of them when
// category is empty.
func FilterDocuments(docs []MedicalDocument, category DocumentCategory) []MedicalDocument {
	if category == "" {
		return docs
	}
	out := []MedicalDocument{}
	for _, d := range docs {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
