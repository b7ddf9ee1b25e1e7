package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/landing-api/internal/common"
)

// TemplateAdmin covers the template management queries used by the admin API.
type TemplateAdmin interface {
	Upsert(ctx context.Context, tpl Template) error
	List(ctx context.Context) ([]Template, error)
}

// Handler exposes admin endpoints for managing payment templates.
type Handler struct {
	Templates TemplateAdmin
}

var allowedMethods = map[string]bool{
	http.MethodGet:  true,
	http.MethodPost: true,
	http.MethodPut:  true,
}

// UpsertTemplate creates or replaces a provider's request template.
func (h *Handler) UpsertTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid body", nil)
		return
	}
	tpl.Slug = strings.ToLower(strings.TrimSpace(tpl.Slug))
	tpl.Method = strings.ToUpper(strings.TrimSpace(tpl.Method))
	if tpl.Slug == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "slug is required", nil)
		return
	}
	if !allowedMethods[tpl.Method] {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "method must be GET, POST or PUT", nil)
		return
	}
	if u, err := url.Parse(tpl.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "api_endpoint must be an absolute URL", nil)
		return
	}
	if err := h.Templates.Upsert(r.Context(), tpl); err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// ListTemplates returns every configured template.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.List(r.Context())
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	if templates == nil {
		templates = []Template{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": templates})
}
