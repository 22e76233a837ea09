package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferreirogomes/rtoken/config"
	"github.com/ferreirogomes/rtoken/event_listener"
	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/services"
	"github.com/ferreirogomes/rtoken/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// app agrupa as dependências montadas a partir da configuração.
type app struct {
	token    *services.Token
	listener *event_listener.Listener
	events   event_listener.EventStore
	db       *storage.DB
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// buildApp escolhe a primitiva de ledger e cria (ou reabre) o token.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	var primitive ledger.Ledger

	switch cfg.Database.Driver {
	case "memory":
		store := event_listener.NewMemoryStore()
		a.events = store
		a.listener = event_listener.NewListener(store, event_listener.DefaultBufferSize, logger)
		primitive = ledger.NewMemory(a.listener)
	default:
		db, err := storage.NewDB(cfg.Database.Driver, cfg.Database.DSN, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.events = db
		a.listener = event_listener.NewListener(db, event_listener.DefaultBufferSize, logger)
		db.SetPublisher(a.listener)
		primitive = db
	}

	token, err := openOrCreate(ctx, cfg.Token, primitive, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.token = token
	return a, nil
}

func openOrCreate(ctx context.Context, tc config.TokenConfig, primitive ledger.Ledger, logger *zap.Logger) (*services.Token, error) {
	opts := []services.Option{services.WithDecimals(tc.Decimals), services.WithLogger(logger)}

	token, err := services.Open(ctx, tc.Name, tc.Symbol, primitive, opts...)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, services.ErrNotInitialized) {
		return nil, err
	}

	if tc.Creator == "" {
		return nil, fmt.Errorf("token.creator é obrigatório para criar o token")
	}
	creator, err := models.ParseAddress(tc.Creator)
	if err != nil {
		return nil, err
	}
	supply, err := decimal.NewFromString(tc.InitialSupply)
	if err != nil {
		return nil, fmt.Errorf("token.initial_supply inválido: %w", err)
	}
	return services.New(ctx, tc.Name, tc.Symbol, supply, creator, primitive, opts...)
}
