package models

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Address identifica uma conta no ledger: uma chave pública de 32 bytes em base58.
type Address = solana.PublicKey

// NullAddress é o endereço nulo ("11111111111111111111111111111111").
// Nenhum titular legítimo pode possuir este endereço.
var NullAddress Address

// IsNullAddress indica se addr é o endereço nulo.
func IsNullAddress(addr Address) bool {
	return addr == NullAddress
}

// ParseAddress converte uma string base58 em Address.
func ParseAddress(s string) (Address, error) {
	addr, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return NullAddress, fmt.Errorf("endereço inválido %q: %w", s, err)
	}
	return addr, nil
}
