package transaction

import (
	"net/http"
	"strconv"

	"github.com/noah-isme/landing-api/internal/common"
)

// Handler exposes the admin transaction listing for the reports screen.
type Handler struct {
	Store Querier
}

// List returns recent transactions, newest first. The limit query parameter
// caps the page size.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.Store.ListRecent(r.Context(), limit)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	if records == nil {
		records = []Record{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": records})
}
