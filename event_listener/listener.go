package event_listener

import (
	"context"
	"sync"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"

	"go.uber.org/zap"
)

// DefaultBufferSize é a capacidade padrão da fila de eventos.
const DefaultBufferSize = 1024

// EventStore persiste o histórico de eventos.
type EventStore interface {
	SaveEvent(ctx context.Context, ev models.Event) error
	ListEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// Listener recebe os eventos do ledger e mantém o histórico sincronizado.
type Listener struct {
	events chan models.Event
	store  EventStore
	logger *zap.Logger

	mu      sync.Mutex
	dropped uint64
}

var _ ledger.Publisher = (*Listener)(nil)

// NewListener cria um listener com uma fila de bufferSize eventos.
func NewListener(store EventStore, bufferSize int, logger *zap.Logger) *Listener {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		events: make(chan models.Event, bufferSize),
		store:  store,
		logger: logger,
	}
}

// Publish enfileira o evento sem bloquear a mutação que o originou.
// Com a fila cheia, o evento é descartado e contabilizado.
func (l *Listener) Publish(ev models.Event) {
	select {
	case l.events <- ev:
	default:
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
		l.logger.Warn("fila de eventos cheia, evento descartado",
			zap.String("event_id", ev.ID),
			zap.String("kind", string(ev.Kind)))
	}
}

// Dropped devolve quantos eventos foram descartados.
func (l *Listener) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// StartListening consome a fila até ctx ser cancelado. Ao sair, drena o que restou.
func (l *Listener) StartListening(ctx context.Context) {
	l.logger.Info("listener de eventos iniciado")
	storeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case ev := <-l.events:
			l.process(storeCtx, ev)
		case <-ctx.Done():
			l.drain(storeCtx)
			l.logger.Info("listener de eventos encerrado")
			return
		}
	}
}

func (l *Listener) drain(ctx context.Context) {
	for {
		select {
		case ev := <-l.events:
			l.process(ctx, ev)
		default:
			return
		}
	}
}

// process registra um evento no histórico.
func (l *Listener) process(ctx context.Context, ev models.Event) {
	l.logger.Info("evento do ledger",
		zap.String("event_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.String("from", ev.From.String()),
		zap.String("to", ev.To.String()),
		zap.String("amount", ev.Amount.String()))

	if err := l.store.SaveEvent(ctx, ev); err != nil {
		l.logger.Error("falha ao salvar evento", zap.String("event_id", ev.ID), zap.Error(err))
	}
}
