package ledger

import (
	"context"
	"sync"

	"github.com/ferreirogomes/rtoken/models"

	"github.com/shopspring/decimal"
)

type allowanceKey struct {
	owner   models.Address
	spender models.Address
}

// Memory é uma implementação em memória do Ledger. Os eventos são publicados
// com m.mu travado, na mesma ordem em que as mutações foram aplicadas.
type Memory struct {
	mu          sync.RWMutex
	balances    map[models.Address]decimal.Decimal
	allowances  map[allowanceKey]decimal.Decimal
	supply      decimal.Decimal
	decimals    uint8
	hasDecimals bool
	publisher   Publisher
}

var _ Ledger = (*Memory)(nil)

// NewMemory cria um ledger vazio. publisher pode ser nil.
func NewMemory(publisher Publisher) *Memory {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Memory{
		balances:   make(map[models.Address]decimal.Decimal),
		allowances: make(map[allowanceKey]decimal.Decimal),
		supply:     decimal.Zero,
		publisher:  publisher,
	}
}

func (m *Memory) BalanceOf(_ context.Context, owner models.Address) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance(owner), nil
}

func (m *Memory) Allowance(_ context.Context, owner, spender models.Address) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allowance(owner, spender), nil
}

func (m *Memory) TotalSupply(_ context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.supply, nil
}

func (m *Memory) Decimals(_ context.Context) (uint8, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decimals, m.hasDecimals, nil
}

func (m *Memory) Mint(_ context.Context, to models.Address, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mint(to, amount)
	return nil
}

func (m *Memory) Initialize(_ context.Context, to models.Address, amount decimal.Decimal, decimals uint8) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.supply.IsZero() {
		return ErrAlreadyInitialized
	}
	m.decimals, m.hasDecimals = decimals, true
	m.mint(to, amount)
	return nil
}

func (m *Memory) Transfer(_ context.Context, from, to models.Address, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	m.publisher.Publish(NewEvent(models.EventTransfer, from, to, amount))
	return nil
}

func (m *Memory) TransferFrom(_ context.Context, spender, from, to models.Address, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := m.allowance(from, spender)
	if allowed.LessThan(amount) {
		return ErrInsufficientAllowance
	}
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	m.allowances[allowanceKey{owner: from, spender: spender}] = allowed.Sub(amount)
	m.publisher.Publish(NewEvent(models.EventTransfer, from, to, amount))
	return nil
}

func (m *Memory) Approve(_ context.Context, owner, spender models.Address, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	m.publisher.Publish(NewEvent(models.EventApproval, owner, spender, amount))
	return nil
}

// mint credita to e aumenta o suprimento. Exige m.mu travado.
func (m *Memory) mint(to models.Address, amount decimal.Decimal) {
	m.balances[to] = m.balance(to).Add(amount)
	m.supply = m.supply.Add(amount)
	m.publisher.Publish(NewEvent(models.EventMint, models.NullAddress, to, amount))
}

// move debita from e credita to. Exige m.mu travado.
func (m *Memory) move(from, to models.Address, amount decimal.Decimal) error {
	fromBalance := m.balance(from)
	if fromBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	m.balances[from] = fromBalance.Sub(amount)
	m.balances[to] = m.balance(to).Add(amount)
	return nil
}

func (m *Memory) balance(owner models.Address) decimal.Decimal {
	if b, ok := m.balances[owner]; ok {
		return b
	}
	return decimal.Zero
}

func (m *Memory) allowance(owner, spender models.Address) decimal.Decimal {
	if a, ok := m.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return a
	}
	return decimal.Zero
}
