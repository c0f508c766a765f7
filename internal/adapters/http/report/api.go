package report

import (
	"errors"
	"net/http"

	corereport "dadosabertos/relatorio/internal/core/report"
	httpresponse "dadosabertos/relatorio/internal/infrastructure/http"
)

// FieldCheckResponse is the body of GET /api/v1/validar.
type FieldCheckResponse struct {
	Campo    string `json:"campo"`
	Valor    string `json:"valor"`
	Valido   bool   `json:"valido"`
	Mensagem string `json:"mensagem,omitempty"`
}

// MaskResponse is the body of GET /api/v1/mascara.
type MaskResponse struct {
	Valor     string `json:"valor"`
	Formatado string `json:"formatado"`
}

// CheckField handles GET /api/v1/validar, the blur check of a single input.
func (h *Handler) CheckField(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("campo")
	value := r.URL.Query().Get("valor")

	if field == "" {
		httpresponse.WriteError(w, http.StatusBadRequest, "Erro de validação", []string{"campo é obrigatório"}, h.log)
		return
	}

	resp := FieldCheckResponse{Campo: field, Valor: value, Valido: true}

	err := corereport.CheckField(field, value)
	var verr *corereport.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		resp.Valido = false
		resp.Mensagem = verr.Notice
	default:
		httpresponse.WriteError(w, http.StatusBadRequest, "Erro de validação",
			[]string{"campo desconhecido: " + field}, h.log)
		return
	}

	httpresponse.WriteJSON(w, http.StatusOK, resp, h.log)
}

// Mask handles GET /api/v1/mascara, the date input formatter.
func (h *Handler) Mask(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("valor")
	httpresponse.WriteJSON(w, http.StatusOK, MaskResponse{
		Valor:     value,
		Formatado: corereport.FormatDateInput(value),
	}, h.log)
}
