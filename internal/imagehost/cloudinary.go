package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrSigningDisabled = errors.New("cloudinary api secret not configured")

type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Folder       string
}

// Signed reports whether server-side signed uploads are possible.
func (c CloudinaryConfig) Signed() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Enabled reports whether either upload path can be used.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && (c.Signed() || c.UploadPreset != "")
}

// Cloudinary uploads to the Cloudinary CDN. With an API secret it uses
// signed uploads, otherwise the unsigned upload preset.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
	cfg CloudinaryConfig
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	if !cfg.Enabled() {
		return nil, errors.New("cloudinary is not configured")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, cfg: cfg}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := CheckImage(filename, 0); err != nil {
		return "", err
	}

	params := uploader.UploadParams{Folder: c.cfg.Folder}

	var (
		result *uploader.UploadResult
		err    error
	)
	if c.cfg.Signed() {
		result, err = c.cld.Upload.Upload(ctx, r, params)
	} else {
		result, err = c.cld.Upload.UnsignedUpload(ctx, r, c.cfg.UploadPreset, params)
	}
	if err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", errors.New("cloudinary did not return a secure URL")
	}
	return result.SecureURL, nil
}

// Signature lets a browser upload straight to Cloudinary.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder,omitempty"`
}

func (c *Cloudinary) Sign(now time.Time) (Signature, error) {
	if !c.cfg.Signed() {
		return Signature{}, ErrSigningDisabled
	}

	ts := now.Unix()
	params := url.Values{"timestamp": []string{strconv.FormatInt(ts, 10)}}
	if c.cfg.Folder != "" {
		params.Set("folder", c.cfg.Folder)
	}
	signature, err := api.SignParameters(params, c.cfg.APISecret)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Signature: signature,
		Timestamp: ts,
		APIKey:    c.cfg.APIKey,
		CloudName: c.cfg.CloudName,
		Folder:    c.cfg.Folder,
	}, nil
}
