package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/ferreirogomes/rtoken/ledger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Drivers suportados.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB representa a conexão com o banco (PostgreSQL ou SQLite) e implementa ledger.Ledger.
type DB struct {
	*sqlx.DB
	driver    string
	logger    *zap.Logger
	publisher ledger.Publisher
}

var _ ledger.Ledger = (*DB)(nil)

// NewDB conecta-se ao banco e executa as migrações.
func NewDB(driver, dataSourceName string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialect, err := migrationDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}
	if driver == DriverSQLite {
		// :memory: é por conexão; uma única conexão também serializa as escritas.
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	logger.Info("conexão com o banco de dados estabelecida", zap.String("driver", driver))

	if err := runMigrations(db.DB, driver, dialect, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{
		DB:        db,
		driver:    driver,
		logger:    logger,
		publisher: ledger.NopPublisher{},
	}, nil
}

// SetPublisher define quem recebe os eventos confirmados.
func (d *DB) SetPublisher(p ledger.Publisher) {
	if p == nil {
		p = ledger.NopPublisher{}
	}
	d.publisher = p
}

func migrationDialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("driver de banco não suportado: %q", driver)
	}
}

// runMigrations executa as migrações embutidas usando sql-migrate.
func runMigrations(db *sql.DB, driver, dialect string, logger *zap.Logger) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations/" + driver,
	}

	n, err := migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		logger.Info("migrações aplicadas", zap.Int("count", n))
	} else {
		logger.Debug("nenhuma migração nova para aplicar")
	}
	return nil
}

// lockSuffix trava as linhas lidas dentro da transação (apenas PostgreSQL).
func (d *DB) lockSuffix() string {
	if d.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
