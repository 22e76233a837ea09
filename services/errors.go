package services

import (
	"errors"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
)

var (
	ErrInvalidInitialSupply = errors.New("suprimento inicial deve ser um inteiro positivo")
	ErrInvalidCreator       = errors.New("criador não pode ser o endereço nulo")
	ErrAlreadyInitialized   = ledger.ErrAlreadyInitialized
	ErrNotInitialized       = errors.New("ledger sem suprimento cunhado")
	ErrDecimalsMismatch     = errors.New("decimals configurado difere do registrado no ledger")
)

// TransferRestrictedError indica que uma regra de restrição bloqueou a transferência.
// Nenhum saldo foi alterado. Error() devolve exatamente a mensagem da restrição.
type TransferRestrictedError struct {
	Code    models.RestrictionCode
	Message string
}

func (e *TransferRestrictedError) Error() string {
	return e.Message
}

// AsRestricted extrai um TransferRestrictedError da cadeia de err.
func AsRestricted(err error) (*TransferRestrictedError, bool) {
	var restricted *TransferRestrictedError
	if errors.As(err, &restricted) {
		return restricted, true
	}
	return nil, false
}
