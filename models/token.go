package models

import "github.com/shopspring/decimal"

// TokenInfo reúne os metadados de exibição do token e o suprimento atual.
type TokenInfo struct {
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`   // Ex: "RTK"
	Decimals    uint8           `json:"decimals"` // Precisão decimal (padrão 18)
	TotalSupply decimal.Decimal `json:"total_supply"`
}
