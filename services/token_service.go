package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/restriction"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDecimals é a precisão decimal padrão do token.
const DefaultDecimals uint8 = 18

// Token é o ledger protegido: toda transferência passa pelo motor de restrições
// antes de chegar à primitiva de ledger.
type Token struct {
	name        string
	symbol      string
	decimals    uint8
	decimalsSet bool
	engine      *restriction.Engine
	ledger      ledger.Ledger
	logger      *zap.Logger
}

// Option configura um Token.
type Option func(*Token)

// WithDecimals define a precisão decimal usada para escalar o suprimento inicial.
// Em Open, o valor precisa bater com o registrado no ledger.
func WithDecimals(decimals uint8) Option {
	return func(t *Token) {
		t.decimals = decimals
		t.decimalsSet = true
	}
}

// WithEngine substitui o conjunto base de regras.
func WithEngine(engine *restriction.Engine) Option {
	return func(t *Token) {
		if engine != nil {
			t.engine = engine
		}
	}
}

// WithLogger define o logger estruturado.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Token) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func newToken(name, symbol string, primitive ledger.Ledger, opts []Option) *Token {
	t := &Token{
		name:     name,
		symbol:   symbol,
		decimals: DefaultDecimals,
		engine:   restriction.Default(),
		ledger:   primitive,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(zap.String("token", symbol))
	return t
}

// New cria o token e credita initialSupply * 10^decimals ao criador.
// Falha se initialSupply não for um inteiro positivo. A checagem de suprimento
// vazio e a cunhagem acontecem atomicamente dentro da primitiva.
func New(ctx context.Context, name, symbol string, initialSupply decimal.Decimal, creator models.Address, primitive ledger.Ledger, opts ...Option) (*Token, error) {
	if !initialSupply.IsPositive() || ledger.ValidateAmount(initialSupply) != nil {
		return nil, ErrInvalidInitialSupply
	}
	if models.IsNullAddress(creator) {
		return nil, ErrInvalidCreator
	}

	t := newToken(name, symbol, primitive, opts)

	scaled := initialSupply.Shift(int32(t.decimals))
	if ledger.ValidateAmount(scaled) != nil {
		return nil, fmt.Errorf("%w: %s * 10^%d excede %d dígitos",
			ErrInvalidInitialSupply, initialSupply, t.decimals, ledger.MaxAmountDigits)
	}
	err := primitive.Initialize(ctx, creator, scaled, t.decimals)
	if errors.Is(err, ledger.ErrAlreadyInitialized) {
		return nil, ErrAlreadyInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao cunhar suprimento inicial: %w", err)
	}
	t.logger.Info("token criado",
		zap.String("creator", creator.String()),
		zap.String("total_supply", scaled.String()),
		zap.Uint8("decimals", t.decimals))
	return t, nil
}

// Open reabre um token cuja primitiva já possui suprimento cunhado.
// A precisão vem do ledger; WithDecimals só é aceito se coincidir com ela.
func Open(ctx context.Context, name, symbol string, primitive ledger.Ledger, opts ...Option) (*Token, error) {
	t := newToken(name, symbol, primitive, opts)

	supply, err := primitive.TotalSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar suprimento: %w", err)
	}
	if supply.IsZero() {
		return nil, ErrNotInitialized
	}

	stored, ok, err := primitive.Decimals(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar decimals: %w", err)
	}
	if ok {
		if t.decimalsSet && stored != t.decimals {
			return nil, fmt.Errorf("%w: configurado %d, registrado %d", ErrDecimalsMismatch, t.decimals, stored)
		}
		t.decimals = stored
	}
	t.logger.Info("token reaberto",
		zap.String("total_supply", supply.String()),
		zap.Uint8("decimals", t.decimals))
	return t, nil
}

// DetectTransferRestriction devolve o código de restrição sem alterar estado.
func (t *Token) DetectTransferRestriction(from, to models.Address, amount decimal.Decimal) models.RestrictionCode {
	return t.engine.Detect(from, to, amount)
}

// MessageForTransferRestriction devolve a mensagem do código; "UNKNOWN" se indefinido.
func (t *Token) MessageForTransferRestriction(code models.RestrictionCode) string {
	return t.engine.MessageFor(code)
}

// Rules devolve as regras ativas na ordem de avaliação.
func (t *Token) Rules() []restriction.Rule {
	return t.engine.Rules()
}

// Transfer move amount do chamador para to.
func (t *Token) Transfer(ctx context.Context, caller, to models.Address, amount decimal.Decimal) error {
	if err := t.guard(caller, caller, to, amount); err != nil {
		return err
	}
	if err := t.ledger.Transfer(ctx, caller, to, amount); err != nil {
		return fmt.Errorf("falha na transferência: %w", err)
	}
	return nil
}

// TransferFrom move amount de from para to usando o allowance concedido a spender.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to models.Address, amount decimal.Decimal) error {
	if err := t.guard(spender, from, to, amount); err != nil {
		return err
	}
	if err := t.ledger.TransferFrom(ctx, spender, from, to, amount); err != nil {
		return fmt.Errorf("falha na transferência delegada: %w", err)
	}
	return nil
}

// Approve autoriza spender a movimentar até amount em nome de owner.
func (t *Token) Approve(ctx context.Context, owner, spender models.Address, amount decimal.Decimal) error {
	if err := t.ledger.Approve(ctx, owner, spender, amount); err != nil {
		return fmt.Errorf("falha ao aprovar allowance: %w", err)
	}
	return nil
}

// guard valida a quantidade e consulta o motor de restrições.
// Deve ser chamado antes de qualquer mutação de saldo.
func (t *Token) guard(caller, from, to models.Address, amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	code := t.engine.Detect(from, to, amount)
	if code.IsSuccess() {
		return nil
	}
	msg := t.engine.MessageFor(code)
	t.logger.Warn("transferência restrita",
		zap.String("caller", caller.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("amount", amount.String()),
		zap.Uint8("code", uint8(code)),
		zap.String("message", msg))
	return &TransferRestrictedError{Code: code, Message: msg}
}

func (t *Token) BalanceOf(ctx context.Context, owner models.Address) (decimal.Decimal, error) {
	return t.ledger.BalanceOf(ctx, owner)
}

func (t *Token) Allowance(ctx context.Context, owner, spender models.Address) (decimal.Decimal, error) {
	return t.ledger.Allowance(ctx, owner, spender)
}

func (t *Token) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	return t.ledger.TotalSupply(ctx)
}

// Info devolve os metadados e o suprimento atual.
func (t *Token) Info(ctx context.Context) (models.TokenInfo, error) {
	supply, err := t.ledger.TotalSupply(ctx)
	if err != nil {
		return models.TokenInfo{}, err
	}
	return models.TokenInfo{
		Name:        t.name,
		Symbol:      t.symbol,
		Decimals:    t.decimals,
		TotalSupply: supply,
	}, nil
}
