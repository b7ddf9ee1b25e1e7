package credential

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/landing-api/internal/common"
)

// Handler exposes the admin endpoint for saving provider credentials.
type Handler struct {
	Store  Store
	Logger zerolog.Logger
}

type saveReq struct {
	Provider string         `json:"provider"`
	Data     map[string]any `json:"data"`
}

// Save encrypts and upserts the credential object for a provider.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid body", nil)
		return
	}
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if req.Provider == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "provider is required", nil)
		return
	}
	if len(req.Data) == 0 {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "data is required", nil)
		return
	}
	if err := h.Store.Save(r.Context(), req.Provider, req.Data); err != nil {
		h.Logger.Error().Err(err).Str("provider", req.Provider).Msg("save credentials")
		common.JSONAppError(w, err)
		return
	}
	// Fingerprint lets an operator tell whether two saves carried the same
	// payload without the plaintext ever reaching the logs.
	raw, _ := json.Marshal(req.Data)
	h.Logger.Info().
		Str("provider", req.Provider).
		Str("fingerprint", common.Fingerprint(string(raw))).
		Msg("credentials saved")
	common.JSON(w, http.StatusOK, map[string]any{"success": true})
}
