package upload_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/credential"
	"github.com/noah-isme/landing-api/internal/upload"
)

type fakeCredentials struct {
	creds map[string]map[string]any
}

func (f fakeCredentials) Get(_ context.Context, slug string) (map[string]any, error) {
	c, ok := f.creds[slug]
	if !ok {
		return nil, credential.NotConfiguredError(slug)
	}
	return c, nil
}

func cloudinaryCreds() fakeCredentials {
	return fakeCredentials{creds: map[string]map[string]any{
		"cloudinary": {"cloud_name": "demo", "api_key": "key123", "api_secret": "secret456"},
	}}
}

func newUploader(creds upload.CredentialSource, baseURL string, client upload.Doer) *upload.Uploader {
	return &upload.Uploader{
		Credentials: creds,
		Client:      client,
		Logger:      zerolog.Nop(),
		BaseURL:     baseURL,
		Now:         func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestImageSignsAndUploads(t *testing.T) {
	var (
		gotPath      string
		gotAPIKey    string
		gotTimestamp string
		gotSignature string
		gotFile      string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotAPIKey = r.FormValue("api_key")
		gotTimestamp = r.FormValue("timestamp")
		gotSignature = r.FormValue("signature")
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		raw, _ := io.ReadAll(file)
		gotFile = string(raw)
		_ = json.NewEncoder(w).Encode(map[string]any{"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/banner.png"})
	}))
	defer srv.Close()

	u := newUploader(cloudinaryCreds(), srv.URL, srv.Client())
	asset, err := u.Image(context.Background(), "banner.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.Equal(t, "/demo/image/upload", gotPath)
	require.Equal(t, "key123", gotAPIKey)
	require.Equal(t, "1700000000", gotTimestamp)
	require.Equal(t, common.Sha1Hex("timestamp=1700000000secret456"), gotSignature)
	require.Equal(t, "png-bytes", gotFile)

	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/banner.png", asset.Src)
	require.Equal(t, "image", asset.Type)
}

func TestImageMissingCredentials(t *testing.T) {
	u := newUploader(fakeCredentials{}, "http://cloudinary.invalid", http.DefaultClient)
	_, err := u.Image(context.Background(), "banner.png", strings.NewReader("x"))
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeCredentialsNotConfigured, app.Code)
}

func TestImageIncompleteCredentials(t *testing.T) {
	creds := fakeCredentials{creds: map[string]map[string]any{
		"cloudinary": {"cloud_name": "demo"},
	}}
	u := newUploader(creds, "http://cloudinary.invalid", http.DefaultClient)
	_, err := u.Image(context.Background(), "banner.png", strings.NewReader("x"))
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeCredentialsCorrupt, app.Code)
}

func TestImageRejectedByProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "Invalid Signature"}})
	}))
	defer srv.Close()

	u := newUploader(cloudinaryCreds(), srv.URL, srv.Client())
	_, err := u.Image(context.Background(), "banner.png", strings.NewReader("x"))
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeUploadFailed, app.Code)
	require.Equal(t, "Invalid Signature", app.Message)
}

func TestHandlerImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/logo.png"})
	}))
	defer srv.Close()

	h := &upload.Handler{Uploader: newUploader(cloudinaryCreds(), srv.URL, srv.Client())}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Image(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []upload.Asset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/logo.png", resp.Data[0].Src)
	require.Equal(t, "image", resp.Data[0].Type)
}

func TestHandlerImageRequiresFile(t *testing.T) {
	h := &upload.Handler{Uploader: newUploader(cloudinaryCreds(), "http://cloudinary.invalid", http.DefaultClient)}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Image(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
