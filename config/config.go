package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configura o servidor HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig escolhe a primitiva de ledger: "memory", "postgres" ou "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// TokenConfig define os parâmetros de construção do token.
type TokenConfig struct {
	Name          string `yaml:"name"`
	Symbol        string `yaml:"symbol"`
	Decimals      uint8  `yaml:"decimals"`
	InitialSupply string `yaml:"initial_supply"`
	Creator       string `yaml:"creator"` // base58
}

// LogConfig configura o logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config reúne toda a configuração do serviço.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Token    TokenConfig    `yaml:"token"`
	Log      LogConfig      `yaml:"log"`
}

// DefaultConfig devolve a configuração usada quando nenhum arquivo é informado.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: "memory"},
		Token: TokenConfig{
			Name:          "Restricted Token",
			Symbol:        "RTK",
			Decimals:      18,
			InitialSupply: "1000000",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load lê o arquivo YAML em path por cima dos valores padrão e aplica as
// variáveis de ambiente RTOKEN_*. path vazio ou inexistente usa os padrões.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("falha ao interpretar configuração: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("falha ao ler configuração: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("RTOKEN_SERVER_ADDR", &c.Server.Addr)
	setString("RTOKEN_DB_DRIVER", &c.Database.Driver)
	setString("RTOKEN_DB_DSN", &c.Database.DSN)
	setString("RTOKEN_TOKEN_NAME", &c.Token.Name)
	setString("RTOKEN_TOKEN_SYMBOL", &c.Token.Symbol)
	setString("RTOKEN_TOKEN_INITIAL_SUPPLY", &c.Token.InitialSupply)
	setString("RTOKEN_TOKEN_CREATOR", &c.Token.Creator)
	setString("RTOKEN_LOG_LEVEL", &c.Log.Level)

	if v, ok := os.LookupEnv("RTOKEN_TOKEN_DECIMALS"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("RTOKEN_TOKEN_DECIMALS inválido: %w", err)
		}
		c.Token.Decimals = uint8(n)
	}
	return nil
}

// Validate confere os campos obrigatórios.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn é obrigatório para o driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver desconhecido: %q", c.Database.Driver)
	}
	if c.Token.Symbol == "" {
		return fmt.Errorf("token.symbol é obrigatório")
	}
	return nil
}
