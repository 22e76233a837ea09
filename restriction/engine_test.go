package restriction_test

import (
	"testing"

	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/restriction"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestDetectNullRecipient verifica que o destinatário nulo é sempre bloqueado
func TestDetectNullRecipient(t *testing.T) {
	engine := restriction.Default()

	senders := []models.Address{models.NullAddress, solana.NewWallet().PublicKey()}
	amounts := []decimal.Decimal{decimal.Zero, decimal.NewFromInt(1), decimal.RequireFromString("1000000000000000000000000")}

	for _, from := range senders {
		for _, amount := range amounts {
			code := engine.Detect(from, models.NullAddress, amount)
			assert.Equal(t, models.CodeZeroAddressRecipient, code)
			assert.False(t, code.IsSuccess())
		}
	}
}

// TestDetectValidRecipient verifica que qualquer outro destinatário é liberado
func TestDetectValidRecipient(t *testing.T) {
	engine := restriction.Default()
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	assert.Equal(t, models.CodeSuccess, engine.Detect(from, to, decimal.NewFromInt(100)))
	assert.Equal(t, models.CodeSuccess, engine.Detect(from, to, decimal.Zero))
	assert.Equal(t, models.CodeSuccess, engine.Detect(from, from, decimal.NewFromInt(5)), "auto-transferência não é caso especial")
	assert.Equal(t, models.CodeSuccess, engine.Detect(models.NullAddress, to, decimal.NewFromInt(5)))
}

// TestMessageFor verifica a tabela de mensagens, inclusive códigos desconhecidos
func TestMessageFor(t *testing.T) {
	engine := restriction.Default()

	assert.Equal(t, "SUCCESS", engine.MessageFor(models.CodeSuccess))
	assert.Equal(t, "ILLEGAL_TRANSFER_TO_ZERO_ADDRESS", engine.MessageFor(models.CodeZeroAddressRecipient))
	for _, code := range []models.RestrictionCode{2, 7, 42, 255} {
		assert.Equal(t, "UNKNOWN", engine.MessageFor(code))
	}
}

// TestDetectIsIdempotent verifica que consultas repetidas devolvem o mesmo resultado
func TestDetectIsIdempotent(t *testing.T) {
	engine := restriction.Default()
	from := solana.NewWallet().PublicKey()
	amount := decimal.NewFromInt(10)

	first := engine.Detect(from, models.NullAddress, amount)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Detect(from, models.NullAddress, amount))
		assert.Equal(t, engine.MessageFor(first), engine.MessageFor(engine.Detect(from, models.NullAddress, amount)))
	}
	assert.Equal(t, decimal.NewFromInt(10), amount)
}

// TestFirstViolatedRuleWins verifica a ordem de avaliação das regras
func TestFirstViolatedRuleWins(t *testing.T) {
	capRule := restriction.Rule{
		Name:    "transfer_cap",
		Code:    10,
		Message: "TRANSFER_CAP_EXCEEDED",
		Violated: func(_, _ models.Address, amount decimal.Decimal) bool {
			return amount.GreaterThan(decimal.NewFromInt(50))
		},
	}
	engine := restriction.NewEngine(restriction.ZeroAddressRecipient, capRule)
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	assert.Equal(t, models.CodeZeroAddressRecipient, engine.Detect(from, models.NullAddress, decimal.NewFromInt(100)))
	assert.Equal(t, models.RestrictionCode(10), engine.Detect(from, to, decimal.NewFromInt(100)))
	assert.Equal(t, models.CodeSuccess, engine.Detect(from, to, decimal.NewFromInt(50)))
	assert.Equal(t, "TRANSFER_CAP_EXCEEDED", engine.MessageFor(10))

	reversed := restriction.NewEngine(capRule, restriction.ZeroAddressRecipient)
	assert.Equal(t, models.RestrictionCode(10), reversed.Detect(from, models.NullAddress, decimal.NewFromInt(100)))
}

// TestNewEngineRejectsInvalidRules verifica as validações de montagem
func TestNewEngineRejectsInvalidRules(t *testing.T) {
	noop := func(_, _ models.Address, _ decimal.Decimal) bool { return false }

	assert.Panics(t, func() {
		restriction.NewEngine(restriction.Rule{Name: "zero", Code: 0, Message: "X", Violated: noop})
	})
	assert.Panics(t, func() {
		restriction.NewEngine(restriction.ZeroAddressRecipient, restriction.Rule{Name: "dup", Code: 1, Message: "X", Violated: noop})
	})
	assert.Panics(t, func() {
		restriction.NewEngine(restriction.Rule{Name: "nil", Code: 3, Message: "X"})
	})
}

func TestRulesReturnsCopy(t *testing.T) {
	engine := restriction.Default()

	rules := engine.Rules()
	assert.Len(t, rules, 1)
	assert.Equal(t, "zero_address_recipient", rules[0].Name)

	rules[0].Code = 99
	assert.Equal(t, models.CodeZeroAddressRecipient, engine.Rules()[0].Code)
}

func TestEmptyEngineAllowsEverything(t *testing.T) {
	engine := restriction.NewEngine()

	assert.Equal(t, models.CodeSuccess, engine.Detect(models.NullAddress, models.NullAddress, decimal.NewFromInt(1)))
	assert.Equal(t, "SUCCESS", engine.MessageFor(models.CodeSuccess))
	assert.Equal(t, "UNKNOWN", engine.MessageFor(models.CodeZeroAddressRecipient))
}
