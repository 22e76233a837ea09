package models

// RestrictionCode identifica por que uma transferência foi bloqueada.
// Os valores são estáveis: integradores podem tomar decisões pelo número.
type RestrictionCode uint8

const (
	// CodeSuccess indica que a transferência é permitida.
	CodeSuccess RestrictionCode = 0
	// CodeZeroAddressRecipient indica destinatário igual ao endereço nulo.
	CodeZeroAddressRecipient RestrictionCode = 1
)

// Mensagens associadas aos códigos. Nunca usadas para decisão.
const (
	MessageSuccess              = "SUCCESS"
	MessageZeroAddressRecipient = "ILLEGAL_TRANSFER_TO_ZERO_ADDRESS"
	MessageUnknown              = "UNKNOWN"
)

// IsSuccess indica se o código libera a transferência.
func (c RestrictionCode) IsSuccess() bool {
	return c == CodeSuccess
}
