// Package restriction decide se uma transferência proposta é permitida.
//
// O Engine avalia uma lista ordenada de regras independentes e devolve o
// código da primeira regra violada. Novas regras entram no fim da lista.
package restriction

import (
	"fmt"

	"github.com/ferreirogomes/rtoken/models"

	"github.com/shopspring/decimal"
)

// Predicate devolve true quando a transferência viola a regra.
type Predicate func(from, to models.Address, amount decimal.Decimal) bool

// Rule associa um predicado a um código e a uma mensagem estáveis.
type Rule struct {
	Name     string                 `json:"name"`
	Code     models.RestrictionCode `json:"code"`
	Message  string                 `json:"message"`
	Violated Predicate              `json:"-"`
}

// ZeroAddressRecipient bloqueia transferências para o endereço nulo.
var ZeroAddressRecipient = Rule{
	Name:    "zero_address_recipient",
	Code:    models.CodeZeroAddressRecipient,
	Message: models.MessageZeroAddressRecipient,
	Violated: func(_, to models.Address, _ decimal.Decimal) bool {
		return models.IsNullAddress(to)
	},
}

// Engine é imutável após a construção e pode ser compartilhado entre goroutines.
type Engine struct {
	rules    []Rule
	messages map[models.RestrictionCode]string
}

// NewEngine cria um Engine que avalia as regras na ordem recebida.
// Entra em pânico se uma regra usar o código 0, repetir um código ou não tiver predicado.
func NewEngine(rules ...Rule) *Engine {
	e := &Engine{
		rules:    make([]Rule, 0, len(rules)),
		messages: map[models.RestrictionCode]string{models.CodeSuccess: models.MessageSuccess},
	}
	for _, r := range rules {
		if r.Code == models.CodeSuccess {
			panic(fmt.Sprintf("restriction: regra %q usa o código reservado 0", r.Name))
		}
		if _, dup := e.messages[r.Code]; dup {
			panic(fmt.Sprintf("restriction: código %d duplicado na regra %q", r.Code, r.Name))
		}
		if r.Violated == nil {
			panic(fmt.Sprintf("restriction: regra %q sem predicado", r.Name))
		}
		if r.Message == "" {
			r.Message = models.MessageUnknown
		}
		e.rules = append(e.rules, r)
		e.messages[r.Code] = r.Message
	}
	return e
}

// Default devolve o conjunto base de regras.
func Default() *Engine {
	return NewEngine(ZeroAddressRecipient)
}

// Detect devolve o código da primeira regra violada, ou CodeSuccess.
// Não tem efeitos colaterais e pode ser chamado especulativamente.
func (e *Engine) Detect(from, to models.Address, amount decimal.Decimal) models.RestrictionCode {
	for _, r := range e.rules {
		if r.Violated(from, to, amount) {
			return r.Code
		}
	}
	return models.CodeSuccess
}

// MessageFor devolve a mensagem do código, ou "UNKNOWN" para códigos não definidos.
func (e *Engine) MessageFor(code models.RestrictionCode) string {
	if msg, ok := e.messages[code]; ok {
		return msg
	}
	return models.MessageUnknown
}

// Rules devolve uma cópia da lista de regras, na ordem de avaliação.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
