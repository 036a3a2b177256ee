package suites

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/joefazee/roundbet/app/database"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/lib/pq"
)

const (
	pgImage    = "postgres:17.5-alpine3.21"
	pgDatabase = "roundbet_test"
	pgUser     = "roundbet"
	pgPassword = "roundbet"
)

// PostgresContainer is a throwaway postgres server for one test suite.
type PostgresContainer struct {
	testcontainers.Container
	ConnectionString string
}

func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	const port = "5432/tcp"

	dsn := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, host, port.Port(), pgDatabase)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{port},
			// durability is irrelevant for tests; rounds and wallets are rewritten constantly
			Cmd: []string{"postgres", "-c", "fsync=off", "-c", "synchronous_commit=off"},
			Env: map[string]string{
				"POSTGRES_DB":       pgDatabase,
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
			},
			WaitingFor: wait.ForSQL(port, "postgres", dsn).
				WithStartupTimeout(30 * time.Second).
				WithQuery("SELECT 1"),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &PostgresContainer{Container: container, ConnectionString: dsn(host, mapped)}, nil
}

// RepositoryTestSuite starts postgres once per suite, applies the project
// migrations when AutoMigrate is set, and empties every table before each
// test.
type RepositoryTestSuite struct {
	suite.Suite
	Container      *PostgresContainer
	DB             *gorm.DB
	SQLDB          *sql.DB
	AutoMigrate    bool
	MigrationsPath string
	// KeepData disables the per-test truncate.
	KeepData bool
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.T().Helper()

	if testing.Short() {
		s.T().Skip("Skipping database integration tests in short mode")
	}

	if s.MigrationsPath == "" {
		s.MigrationsPath = findMigrationsPath()
	}

	ctx := context.Background()
	container, err := NewPostgresContainer(ctx)
	if err != nil {
		s.T().Fatalf("Failed to create postgres container: %v", err)
	}
	s.Container = container
	s.T().Cleanup(s.cleanup)

	s.connect(ctx)

	if s.AutoMigrate {
		if _, err := os.Stat(s.MigrationsPath); err != nil {
			s.T().Fatalf("Migrations not found at %q: %v", s.MigrationsPath, err)
		}
		if err := database.Migrate(s.DB, s.MigrationsPath); err != nil {
			s.T().Fatalf("Failed to run migrations: %v", err)
		}
	}
}

func (s *RepositoryTestSuite) connect(ctx context.Context) {
	sqlDB, err := sql.Open("postgres", s.Container.ConnectionString)
	if err != nil {
		s.T().Fatalf("Failed to open sql connection: %v", err)
	}
	// concurrency tests race several goroutines through their own connections
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		s.T().Fatalf("Failed to ping database: %v", err)
	}
	s.SQLDB = sqlDB

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		s.T().Fatalf("Failed to open gorm connection: %v", err)
	}
	s.DB = gormDB
}

func findMigrationsPath() string {
	wd, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return filepath.Join(wd, "migrations")
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return ""
		}
		wd = parent
	}
}

func (s *RepositoryTestSuite) BeforeTest(_, _ string) {
	s.Truncate()
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.Truncate()
}

// Truncate empties every application table, leaving the migration version.
func (s *RepositoryTestSuite) Truncate() {
	if s.KeepData || s.DB == nil {
		return
	}

	var tables []string
	s.DB.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		AND table_name <> 'schema_migrations'
	`).Scan(&tables)
	if len(tables) == 0 {
		return
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	s.DB.Exec("TRUNCATE " + strings.Join(quoted, ", ") + " CASCADE")
}

func (s *RepositoryTestSuite) cleanup() {
	if s.SQLDB != nil {
		_ = s.SQLDB.Close()
	}
	if s.Container != nil {
		_ = s.Container.Terminate(context.Background())
	}
}

// CountRecords counts the rows of table.
func (s *RepositoryTestSuite) CountRecords(table string) int64 {
	var c int64
	s.DB.Table(table).Count(&c)
	return c
}
