package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ferreirogomes/rtoken/event_listener"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const defaultEventsLimit = 50

// TokenHandler lida com requisições HTTP de saldos, allowances e transferências.
type TokenHandler struct {
	Service *services.Token
	Events  event_listener.EventStore
}

// NewTokenHandler cria uma nova instância do handler de token.
func NewTokenHandler(s *services.Token, events event_listener.EventStore) *TokenHandler {
	return &TokenHandler{Service: s, Events: events}
}

// TransferRequest é o corpo de POST /transfers
type TransferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// TransferFromRequest é o corpo de POST /transfers/from
type TransferFromRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ApproveRequest é o corpo de POST /approvals
type ApproveRequest struct {
	Spender string          `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
}

// AmountResponse carrega um saldo, allowance ou suprimento.
type AmountResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

// GetInfo devolve nome, símbolo, precisão e suprimento.
// GET /token
func (h *TokenHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.Info(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetBalance obtém o saldo de uma conta.
// GET /balances/{address}
func (h *TokenHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := models.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := h.Service.BalanceOf(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: amount})
}

// GetAllowance obtém quanto spender pode movimentar em nome de owner.
// GET /allowances/{owner}/{spender}
func (h *TokenHandler) GetAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := models.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	spender, err := models.ParseAddress(chi.URLParam(r, "spender"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := h.Service.Allowance(r.Context(), owner, spender)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: amount})
}

// Transfer move tokens do chamador para o destinatário.
// POST /transfers
func (h *TokenHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := models.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Transfer(r.Context(), caller, to, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TransferFrom move tokens de uma conta usando o allowance do chamador.
// POST /transfers/from
func (h *TokenHandler) TransferFrom(w http.ResponseWriter, r *http.Request) {
	spender, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req TransferFromRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := models.ParseAddress(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := models.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.TransferFrom(r.Context(), spender, from, to, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Approve concede allowance a um gastador.
// POST /approvals
func (h *TokenHandler) Approve(w http.ResponseWriter, r *http.Request) {
	owner, err := callerFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	spender, err := models.ParseAddress(req.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Approve(r.Context(), owner, spender, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListEvents devolve as notificações mais recentes.
// GET /events?limit=
func (h *TokenHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = n
	}
	events, err := h.Events.ListEvents(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
