package page

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/pricing"
)

// Repository covers the page queries used by the HTTP layer.
type Repository interface {
	Upsert(ctx context.Context, p Page) (int64, error)
	List(ctx context.Context) ([]ListItem, error)
	GetBySlug(ctx context.Context, slug string) (Page, error)
	GetConfig(ctx context.Context, pageID int64) (pricing.ProductConfig, error)
}

// Handler exposes admin page CRUD plus the public storefront endpoints.
type Handler struct {
	Repo Repository
}

type upsertReq struct {
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	HTML          string          `json:"html"`
	CSS           string          `json:"css"`
	ProductConfig json.RawMessage `json:"product_config"`
	ProductType   string          `json:"product_type"`
}

// Upsert creates or replaces a page by slug.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid body", nil)
		return
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Slug == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "slug is required", nil)
		return
	}
	id, err := h.Repo.Upsert(r.Context(), Page{
		Slug:          req.Slug,
		Title:         req.Title,
		HTML:          req.HTML,
		CSS:           req.CSS,
		ProductConfig: req.ProductConfig,
		ProductType:   req.ProductType,
	})
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// List returns the light page listing for the admin overview.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	if items == nil {
		items = []ListItem{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Get returns the full page row for the admin editor.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.Repo.GetBySlug(r.Context(), slug)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

type storefrontConfig struct {
	Variants  []pricing.Variant  `json:"variants"`
	OrderBump *pricing.OrderBump `json:"order_bump,omitempty"`
}

// StorefrontConfig returns the purchase options for a page. Coupon codes are
// withheld; the client validates codes through the coupon check endpoint.
func (h *Handler) StorefrontConfig(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.Repo.GetBySlug(r.Context(), slug)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	cfg, err := p.Config()
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	variants := cfg.Variants
	if variants == nil {
		variants = []pricing.Variant{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": storefrontConfig{Variants: variants, OrderBump: cfg.OrderBump},
	})
}

type couponCheckReq struct {
	PageID int64  `json:"page_id"`
	Code   string `json:"code"`
}

// CheckCoupon validates a coupon code against a page's configuration. A miss
// is a normal response, not an error.
func (h *Handler) CheckCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponCheckReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid body", nil)
		return
	}
	cfg, err := h.Repo.GetConfig(r.Context(), req.PageID)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	for _, c := range cfg.Coupons {
		if strings.ToUpper(c.Code) == code && code != "" {
			common.JSON(w, http.StatusOK, map[string]any{
				"success": true,
				"type":    c.Type,
				"value":   c.Value,
			})
			return
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"success": false, "message": "invalid coupon code"})
}
