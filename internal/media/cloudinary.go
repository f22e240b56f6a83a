package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads to a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

// NewCloudinary configures the client from a cloudinary:// URL.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, now: time.Now}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error) {
	ct, body, err := Sniff(r)
	if err != nil {
		return "", err
	}
	resp, err := c.cld.Upload.Upload(ctx, body, UploadParams(kind, filename, ct, c.now()))
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// UploadParams builds the request for one file.
func UploadParams(kind Kind, filename, contentType string, now time.Time) uploader.UploadParams {
	return uploader.UploadParams{
		Folder:       kind.Folder(),
		PublicID:     PublicID(filename, now),
		ResourceType: ResourceType(contentType),
		Overwrite:    api.Bool(false),
	}
}
