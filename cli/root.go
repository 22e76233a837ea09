package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "rtoken",
	Short:        "Token de transferência restrita",
	Long:         "Ledger fungível em que toda transferência passa por regras de restrição antes de alterar saldos.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Caminho do arquivo YAML de configuração")
}

// Execute executa o comando raiz.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
