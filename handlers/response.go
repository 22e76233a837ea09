package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/services"
)

// AccountHeader identifica a conta chamadora nas operações de escrita.
const AccountHeader = "X-Account"

// ErrorResponse é o corpo devolvido em qualquer falha.
type ErrorResponse struct {
	Error           string                  `json:"error"`
	RestrictionCode *models.RestrictionCode `json:"restriction_code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError traduz os erros do serviço em status HTTP.
func writeServiceError(w http.ResponseWriter, err error) {
	if restricted, ok := services.AsRestricted(err); ok {
		code := restricted.Code
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: restricted.Message, RestrictionCode: &code})
		return
	}
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance), errors.Is(err, ledger.ErrInsufficientAllowance):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// callerFrom lê a conta chamadora do cabeçalho X-Account.
func callerFrom(r *http.Request) (models.Address, error) {
	raw := r.Header.Get(AccountHeader)
	if raw == "" {
		return models.NullAddress, errors.New("cabeçalho " + AccountHeader + " é obrigatório")
	}
	return models.ParseAddress(raw)
}
