// Package ledger define a primitiva de ledger fungível usada pelo token:
// saldos, allowances, suprimento total e cunhagem.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ferreirogomes/rtoken/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmountDigits é o maior número de dígitos de uma quantidade, o mesmo
// limite da coluna NUMERIC(78, 0) no PostgreSQL.
const MaxAmountDigits = 78

var (
	ErrInsufficientBalance   = errors.New("saldo insuficiente")
	ErrInsufficientAllowance = errors.New("allowance insuficiente")
	ErrInvalidAmount         = errors.New("quantidade deve ser um inteiro não negativo de até 78 dígitos")
	ErrAlreadyInitialized    = errors.New("ledger já possui suprimento cunhado")
)

// Ledger é a primitiva que movimenta saldos. Cada mutação é atômica:
// ou se aplica por inteiro ou não altera nenhum estado.
type Ledger interface {
	BalanceOf(ctx context.Context, owner models.Address) (decimal.Decimal, error)
	Allowance(ctx context.Context, owner, spender models.Address) (decimal.Decimal, error)
	TotalSupply(ctx context.Context) (decimal.Decimal, error)
	Mint(ctx context.Context, to models.Address, amount decimal.Decimal) error
	// Initialize cunha o suprimento inicial e registra decimals numa única
	// operação. Falha com ErrAlreadyInitialized se já houver suprimento.
	Initialize(ctx context.Context, to models.Address, amount decimal.Decimal, decimals uint8) error
	// Decimals devolve a precisão registrada por Initialize; ok é false se nada foi registrado.
	Decimals(ctx context.Context) (decimals uint8, ok bool, err error)
	Transfer(ctx context.Context, from, to models.Address, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, spender, from, to models.Address, amount decimal.Decimal) error
	Approve(ctx context.Context, owner, spender models.Address, amount decimal.Decimal) error
}

// Publisher recebe as notificações emitidas após cada mutação confirmada.
// Publish não deve bloquear: o Memory publica com seu lock travado.
type Publisher interface {
	Publish(ev models.Event)
}

// NopPublisher descarta todos os eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(models.Event) {}

// ValidateAmount rejeita quantidades negativas, fracionárias ou com mais de
// MaxAmountDigits dígitos. O expoente é checado antes de qualquer operação que
// reescale o coeficiente.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	exp := amount.Exponent()
	if exp > MaxAmountDigits || exp < -MaxAmountDigits {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	// dígitos da parte inteira; <= 0 significa 0 < amount < 1
	digits := amount.NumDigits() + int(exp)
	if digits <= 0 || digits > MaxAmountDigits {
		return ErrInvalidAmount
	}
	if !amount.IsInteger() {
		return ErrInvalidAmount
	}
	return nil
}

// NewEvent monta uma notificação com ID e horário preenchidos.
func NewEvent(kind models.EventKind, from, to models.Address, amount decimal.Decimal) models.Event {
	return models.Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		From:      from,
		To:        to,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}
