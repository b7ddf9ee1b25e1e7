package upload

import (
	"net/http"

	"github.com/noah-isme/landing-api/internal/common"
)

const maxUploadBytes = 10 << 20

// Handler exposes the admin image upload endpoint.
type Handler struct {
	Uploader *Uploader
}

// Image accepts a multipart form with a "file" field and returns the hosted
// asset reference.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "multipart form with a file field is required", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "file field is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	asset, err := h.Uploader.Image(r.Context(), header.Filename, file)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": []Asset{asset}})
}
