package handler

import (
	"net/http"

	"storefront/internal/admin"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves the admin order viewer.
type AdminHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.OrderService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders?status=&q=&sort=&dir=.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q, err := admin.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	list, err := h.service.ListOrders(r.Context(), q)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, list)
}
