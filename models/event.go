package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind classifica uma notificação emitida pelo ledger.
type EventKind string

const (
	EventTransfer EventKind = "transfer"
	EventApproval EventKind = "approval"
	EventMint     EventKind = "mint"
)

// Event é a notificação padrão emitida após cada mutação confirmada.
// Em aprovações, From é o titular e To é o gastador.
type Event struct {
	ID        string          `json:"id"`
	Kind      EventKind       `json:"kind"`
	From      Address         `json:"from"`
	To        Address         `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
