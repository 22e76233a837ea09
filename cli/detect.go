package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/restriction"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	detectFrom   string
	detectTo     string
	detectAmount string
)

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(messageCmd)
	detectCmd.Flags().StringVar(&detectFrom, "from", "", "Conta remetente em base58 (obrigatório)")
	detectCmd.Flags().StringVar(&detectTo, "to", "", "Conta destinatária em base58 (obrigatório)")
	detectCmd.Flags().StringVar(&detectAmount, "amount", "0", "Quantidade em unidades mínimas")
	detectCmd.MarkFlagRequired("from")
	detectCmd.MarkFlagRequired("to")
}

type restrictionResult struct {
	Code    models.RestrictionCode `json:"code"`
	Message string                 `json:"message"`
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Verifica se uma transferência seria permitida, sem executá-la",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := models.ParseAddress(detectFrom)
		if err != nil {
			return err
		}
		to, err := models.ParseAddress(detectTo)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(detectAmount)
		if err != nil {
			return fmt.Errorf("amount inválido: %w", err)
		}
		if err := ledger.ValidateAmount(amount); err != nil {
			return err
		}

		engine := restriction.Default()
		code := engine.Detect(from, to, amount)
		return printJSON(cmd, restrictionResult{Code: code, Message: engine.MessageFor(code)})
	},
}

var messageCmd = &cobra.Command{
	Use:   "message <code>",
	Short: "Mostra a mensagem associada a um código de restrição",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("código inválido %q: %w", args[0], err)
		}
		code := models.RestrictionCode(n)
		return printJSON(cmd, restrictionResult{Code: code, Message: restriction.Default().MessageFor(code)})
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
