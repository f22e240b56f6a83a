// Package media stores profile pictures and résumés on a hosted media
// service and returns their public URLs.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Kind selects the folder and the form field of an upload.
type Kind string

const (
	KindProfilePic Kind = "profilePic"
	KindResume     Kind = "resume"
)

// Folder returns the remote folder for k.
func (k Kind) Folder() string {
	switch k {
	case KindProfilePic:
		return "profile_pics"
	case KindResume:
		return "resumes"
	}
	return "jobportal_uploads"
}

var (
	ErrUnsupportedType = errors.New("only PDF, JPEG or PNG files are allowed")
	ErrDisabled        = errors.New("uploads are not configured")
)

// Allowed content types, detected from the file bytes.
var allowed = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error)
}

// Sniff detects the content type from the first bytes of r and rejects
// anything but PDF, JPEG and PNG. The returned reader still yields the
// whole content.
func Sniff(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !allowed[ct] {
		return ct, nil, fmt.Errorf("%w (got %s)", ErrUnsupportedType, ct)
	}
	return ct, br, nil
}

// PublicID names an upload "<unix millis>-<base name>".
func PublicID(filename string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '?' || r == '&' || r == '#' || r == '%':
			return -1
		}
		return r
	}, base)
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// ResourceType is "raw" for PDFs and "image" for pictures.
func ResourceType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return "image"
	}
	return "raw"
}

// Disabled rejects every upload. Used when no media store is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, Kind, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
