package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// withTx executa fn numa transação; qualquer erro desfaz todas as alterações.
func (d *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}
	return nil
}

// apply executa fn numa transação e publica o evento devolvido após o commit.
// O evento é montado com as linhas já travadas, então CreatedAt segue a ordem
// em que mutações conflitantes foram aplicadas.
func (d *DB) apply(ctx context.Context, fn func(tx *sqlx.Tx) (models.Event, error)) error {
	var ev models.Event
	err := d.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		ev, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	d.publisher.Publish(ev)
	return nil
}

func (d *DB) BalanceOf(ctx context.Context, owner models.Address) (decimal.Decimal, error) {
	return d.getAmount(ctx, d.DB, `SELECT amount FROM balances WHERE address = ?`, owner.String())
}

func (d *DB) Allowance(ctx context.Context, owner, spender models.Address) (decimal.Decimal, error) {
	return d.getAmount(ctx, d.DB, `SELECT amount FROM allowances WHERE owner = ? AND spender = ?`, owner.String(), spender.String())
}

func (d *DB) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	return d.getAmount(ctx, d.DB, `SELECT total FROM supply WHERE id = 1`)
}

func (d *DB) Decimals(ctx context.Context) (uint8, bool, error) {
	var decimals sql.NullInt64
	if err := d.GetContext(ctx, &decimals, `SELECT decimals FROM supply WHERE id = 1`); err != nil {
		return 0, false, fmt.Errorf("falha ao consultar decimals: %w", err)
	}
	if !decimals.Valid {
		return 0, false, nil
	}
	return uint8(decimals.Int64), true, nil
}

func (d *DB) Mint(ctx context.Context, to models.Address, amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return d.apply(ctx, func(tx *sqlx.Tx) (models.Event, error) {
		total, err := d.lockSupply(ctx, tx)
		if err != nil {
			return models.Event{}, err
		}
		return d.mint(ctx, tx, to, amount, total)
	})
}

// Initialize trava a linha de suprimento antes de checá-la, então duas
// inicializações concorrentes não cunham duas vezes.
func (d *DB) Initialize(ctx context.Context, to models.Address, amount decimal.Decimal, decimals uint8) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return d.apply(ctx, func(tx *sqlx.Tx) (models.Event, error) {
		total, err := d.lockSupply(ctx, tx)
		if err != nil {
			return models.Event{}, err
		}
		if !total.IsZero() {
			return models.Event{}, ledger.ErrAlreadyInitialized
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE supply SET decimals = ? WHERE id = 1`), int64(decimals)); err != nil {
			return models.Event{}, fmt.Errorf("falha ao registrar decimals: %w", err)
		}
		return d.mint(ctx, tx, to, amount, total)
	})
}

func (d *DB) Transfer(ctx context.Context, from, to models.Address, amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return d.apply(ctx, func(tx *sqlx.Tx) (models.Event, error) {
		if err := d.move(ctx, tx, from, to, amount); err != nil {
			return models.Event{}, err
		}
		return ledger.NewEvent(models.EventTransfer, from, to, amount), nil
	})
}

func (d *DB) TransferFrom(ctx context.Context, spender, from, to models.Address, amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return d.apply(ctx, func(tx *sqlx.Tx) (models.Event, error) {
		allowed, err := d.getAmount(ctx, tx,
			`SELECT amount FROM allowances WHERE owner = ? AND spender = ?`+d.lockSuffix(),
			from.String(), spender.String())
		if err != nil {
			return models.Event{}, err
		}
		if allowed.LessThan(amount) {
			return models.Event{}, ledger.ErrInsufficientAllowance
		}
		if err := d.move(ctx, tx, from, to, amount); err != nil {
			return models.Event{}, err
		}
		if err := d.setAllowance(ctx, tx, from, spender, allowed.Sub(amount)); err != nil {
			return models.Event{}, err
		}
		return ledger.NewEvent(models.EventTransfer, from, to, amount), nil
	})
}

func (d *DB) Approve(ctx context.Context, owner, spender models.Address, amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return d.apply(ctx, func(tx *sqlx.Tx) (models.Event, error) {
		if err := d.setAllowance(ctx, tx, owner, spender, amount); err != nil {
			return models.Event{}, err
		}
		return ledger.NewEvent(models.EventApproval, owner, spender, amount), nil
	})
}

// lockSupply lê o suprimento travando sua linha. Toda cunhagem trava o
// suprimento antes dos saldos.
func (d *DB) lockSupply(ctx context.Context, tx *sqlx.Tx) (decimal.Decimal, error) {
	return d.getAmount(ctx, tx, `SELECT total FROM supply WHERE id = 1`+d.lockSuffix())
}

// mint credita to e soma amount ao suprimento total dentro de tx.
func (d *DB) mint(ctx context.Context, tx *sqlx.Tx, to models.Address, amount, total decimal.Decimal) (models.Event, error) {
	balances, err := d.lockBalances(ctx, tx, to)
	if err != nil {
		return models.Event{}, err
	}
	if err := d.setBalance(ctx, tx, to, balances[to].Add(amount)); err != nil {
		return models.Event{}, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE supply SET total = ? WHERE id = 1`), total.Add(amount)); err != nil {
		return models.Event{}, fmt.Errorf("falha ao atualizar suprimento: %w", err)
	}
	return ledger.NewEvent(models.EventMint, models.NullAddress, to, amount), nil
}

// move debita from e credita to dentro de tx.
func (d *DB) move(ctx context.Context, tx *sqlx.Tx, from, to models.Address, amount decimal.Decimal) error {
	balances, err := d.lockBalances(ctx, tx, from, to)
	if err != nil {
		return err
	}
	if balances[from].LessThan(amount) {
		return ledger.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	if err := d.setBalance(ctx, tx, from, balances[from].Sub(amount)); err != nil {
		return err
	}
	return d.setBalance(ctx, tx, to, balances[to].Add(amount))
}

// lockBalances garante que as contas existam e trava suas linhas em ordem fixa,
// evitando deadlock entre transferências cruzadas.
func (d *DB) lockBalances(ctx context.Context, tx *sqlx.Tx, addrs ...models.Address) (map[models.Address]decimal.Decimal, error) {
	if len(addrs) == 2 && bytes.Compare(addrs[0][:], addrs[1][:]) > 0 {
		addrs[0], addrs[1] = addrs[1], addrs[0]
	}
	out := make(map[models.Address]decimal.Decimal, len(addrs))
	for _, addr := range addrs {
		if _, seen := out[addr]; seen {
			continue
		}
		_, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO balances (address, amount) VALUES (?, ?) ON CONFLICT (address) DO NOTHING`),
			addr.String(), decimal.Zero)
		if err != nil {
			return nil, fmt.Errorf("falha ao criar conta %s: %w", addr, err)
		}
		amount, err := d.getAmount(ctx, tx, `SELECT amount FROM balances WHERE address = ?`+d.lockSuffix(), addr.String())
		if err != nil {
			return nil, err
		}
		out[addr] = amount
	}
	return out, nil
}

func (d *DB) setBalance(ctx context.Context, tx *sqlx.Tx, addr models.Address, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE balances SET amount = ? WHERE address = ?`), amount, addr.String())
	if err != nil {
		return fmt.Errorf("falha ao atualizar saldo de %s: %w", addr, err)
	}
	return nil
}

func (d *DB) setAllowance(ctx context.Context, tx *sqlx.Tx, owner, spender models.Address, amount decimal.Decimal) error {
	query := `INSERT INTO allowances (owner, spender, amount) VALUES (?, ?, ?)
		ON CONFLICT (owner, spender) DO UPDATE SET amount = excluded.amount`
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), owner.String(), spender.String(), amount); err != nil {
		return fmt.Errorf("falha ao atualizar allowance: %w", err)
	}
	return nil
}

// getAmount lê uma quantidade; linha ausente vale zero.
func (d *DB) getAmount(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := sqlx.GetContext(ctx, q, &amount, d.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("falha ao consultar quantidade: %w", err)
	}
	return amount, nil
}
