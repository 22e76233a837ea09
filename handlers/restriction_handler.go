package handlers

import (
	"net/http"
	"strconv"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// RestrictionHandler expõe as consultas puras do motor de restrições.
type RestrictionHandler struct {
	Service *services.Token
}

func NewRestrictionHandler(s *services.Token) *RestrictionHandler {
	return &RestrictionHandler{Service: s}
}

// RestrictionResponse é a resposta das consultas de restrição.
type RestrictionResponse struct {
	Code    models.RestrictionCode `json:"code"`
	Message string                 `json:"message"`
}

// Detect informa se uma transferência seria permitida, sem executá-la.
// GET /restrictions/detect?from=&to=&amount=
func (h *RestrictionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := models.ParseAddress(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := models.ParseAddress(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount := decimal.Zero
	if raw := q.Get("amount"); raw != "" {
		amount, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "amount inválido")
			return
		}
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	code := h.Service.DetectTransferRestriction(from, to, amount)
	writeJSON(w, http.StatusOK, RestrictionResponse{
		Code:    code,
		Message: h.Service.MessageForTransferRestriction(code),
	})
}

// Message devolve a mensagem associada a um código.
// GET /restrictions/{code}/message
func (h *RestrictionHandler) Message(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "code"), 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, "código de restrição inválido")
		return
	}
	code := models.RestrictionCode(n)
	writeJSON(w, http.StatusOK, RestrictionResponse{
		Code:    code,
		Message: h.Service.MessageForTransferRestriction(code),
	})
}

// ListRules devolve as regras ativas na ordem de avaliação.
// GET /restrictions
func (h *RestrictionHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Rules())
}
