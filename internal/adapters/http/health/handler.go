package health

import (
	"net/http"

	apphealth "dadosabertos/relatorio/internal/application/health"
	httpresponse "dadosabertos/relatorio/internal/infrastructure/http"
)

// Handler serves GET /health.
type Handler struct {
	service *apphealth.Service
}

func NewHandler(service *apphealth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	httpresponse.WriteJSON(w, http.StatusOK, h.service.Status(r.Context()), nil)
}
