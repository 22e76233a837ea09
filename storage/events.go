package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ferreirogomes/rtoken/models"

	"github.com/shopspring/decimal"
)

// eventRow espelha a tabela events.
type eventRow struct {
	ID        string          `db:"id"`
	Kind      string          `db:"kind"`
	From      string          `db:"from_address"`
	To        string          `db:"to_address"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt int64           `db:"created_at"`
}

// SaveEvent grava uma notificação no histórico. Reenvios do mesmo ID são ignorados.
func (d *DB) SaveEvent(ctx context.Context, ev models.Event) error {
	query := `INSERT INTO events (id, kind, from_address, to_address, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`
	_, err := d.ExecContext(ctx, d.Rebind(query),
		ev.ID, string(ev.Kind), ev.From.String(), ev.To.String(), ev.Amount, ev.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("falha ao salvar evento %s: %w", ev.ID, err)
	}
	return nil
}

// ListEvents devolve os eventos mais recentes primeiro.
func (d *DB) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	var rows []eventRow
	query := `SELECT id, kind, from_address, to_address, amount, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := d.SelectContext(ctx, &rows, d.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("falha ao listar eventos: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		from, err := models.ParseAddress(r.From)
		if err != nil {
			return nil, err
		}
		to, err := models.ParseAddress(r.To)
		if err != nil {
			return nil, err
		}
		events = append(events, models.Event{
			ID:        r.ID,
			Kind:      models.EventKind(r.Kind),
			From:      from,
			To:        to,
			Amount:    r.Amount,
			CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		})
	}
	return events, nil
}
