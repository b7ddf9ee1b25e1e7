// Package upload pushes page assets to Cloudinary using the credentials saved
// under the cloudinary provider slug.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/credential"
)

const providerSlug = "cloudinary"

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// CredentialSource resolves a provider slug to its decrypted credential set.
type CredentialSource interface {
	Get(ctx context.Context, providerSlug string) (map[string]any, error)
}

// Doer abstracts the outbound HTTP client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Asset is one uploaded file reference in the shape the page editor's asset
// manager consumes.
type Asset struct {
	Src  string `json:"src"`
	Type string `json:"type"`
}

// Uploader performs signed image uploads. Requests are signed with
// SHA-1 over "timestamp=<ts>" plus the api_secret, per Cloudinary's signed
// upload scheme.
type Uploader struct {
	Credentials CredentialSource
	Client      Doer
	Logger      zerolog.Logger

	// BaseURL overrides the Cloudinary API root in tests.
	BaseURL string
	// Now is a seam for deterministic signatures in tests.
	Now func() time.Time
}

func uploadError(status int, message string, err error) *common.AppError {
	return common.NewAppError(common.CodeUploadFailed, message, status, err)
}

// Image uploads one file and returns its hosted location.
func (u *Uploader) Image(ctx context.Context, filename string, file io.Reader) (Asset, error) {
	creds, err := u.Credentials.Get(ctx, providerSlug)
	if err != nil {
		return Asset{}, err
	}
	cloudName, _ := creds["cloud_name"].(string)
	apiKey, _ := creds["api_key"].(string)
	apiSecret, _ := creds["api_secret"].(string)
	if cloudName == "" || apiKey == "" {
		return Asset{}, credential.CorruptError(providerSlug)
	}

	timestamp := strconv.FormatInt(u.now().Unix(), 10)
	signature := common.Sha1Hex("timestamp=" + timestamp + apiSecret)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Asset{}, uploadError(http.StatusInternalServerError, "image upload failed", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Asset{}, uploadError(http.StatusInternalServerError, "image upload failed", err)
	}
	_ = mw.WriteField("api_key", apiKey)
	_ = mw.WriteField("timestamp", timestamp)
	_ = mw.WriteField("signature", signature)
	if err := mw.Close(); err != nil {
		return Asset{}, uploadError(http.StatusInternalServerError, "image upload failed", err)
	}

	base := u.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/%s/image/upload", base, cloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Asset{}, uploadError(http.StatusInternalServerError, "image upload failed", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		return Asset{}, uploadError(http.StatusBadGateway, "image upload failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Asset{}, uploadError(http.StatusBadGateway, "image upload failed", err)
	}
	if payload.SecureURL == "" {
		message := payload.Error.Message
		if message == "" {
			message = "image upload failed"
		}
		u.Logger.Warn().Int("status", resp.StatusCode).Str("message", message).Msg("upload rejected")
		return Asset{}, uploadError(http.StatusBadGateway, message, nil)
	}

	return Asset{Src: payload.SecureURL, Type: "image"}, nil
}

func (u *Uploader) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}
