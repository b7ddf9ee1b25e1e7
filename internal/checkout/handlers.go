package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/landing-api/internal/common"
)

// Handler exposes the public checkout endpoint.
type Handler struct {
	Svc *Service
}

// Create accepts a checkout request and relays the normalised payment result.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout unavailable", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid body", nil)
		return
	}
	out, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "missing required fields", verr.Error())
			return
		}
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, out)
}
