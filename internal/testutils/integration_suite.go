package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"decoder/internal/config"
)

// IntegrationSuite starts Postgres (migrated) and nsqd in containers.
type IntegrationSuite struct {
	T       *testing.T
	DB      *sql.DB
	NSQ     *nsq.Producer
	NSQAddr string
	// NSQHTTP is the nsqd HTTP address, used to create topics.
	NSQHTTP string

	pgHost string
	pgPort int

	pgContainer  *postgres.PostgresContainer
	nsqContainer testcontainers.Container
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	return &IntegrationSuite{T: t}
}

func (s *IntegrationSuite) Setup() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("decoder_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(s.T, err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T, err)

	s.pgHost, err = pgContainer.Host(ctx)
	require.NoError(s.T, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(s.T, err)
	s.pgPort = pgPort.Int()

	s.DB, err = sql.Open("postgres", connStr)
	require.NoError(s.T, err)

	_, b, _, _ := runtime.Caller(0)
	migrationPath := fmt.Sprintf("file://%s/../../migrations", filepath.Dir(b))
	m, err := migrate.New(migrationPath, connStr)
	require.NoError(s.T, err)
	require.NoError(s.T, m.Up())

	nsqC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nsqio/nsq:v1.3.0",
			ExposedPorts: []string{"4150/tcp", "4151/tcp"},
			Cmd:          []string{"/nsqd", "--broadcast-address=localhost"},
			WaitingFor:   wait.ForLog("TCP: listening on").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(s.T, err)
	s.nsqContainer = nsqC

	host, err := nsqC.Host(ctx)
	require.NoError(s.T, err)
	tcpPort, err := nsqC.MappedPort(ctx, "4150")
	require.NoError(s.T, err)
	httpPort, err := nsqC.MappedPort(ctx, "4151")
	require.NoError(s.T, err)

	s.NSQAddr = fmt.Sprintf("%s:%s", host, tcpPort.Port())
	s.NSQHTTP = fmt.Sprintf("%s:%s", host, httpPort.Port())
	s.NSQ, err = nsq.NewProducer(s.NSQAddr, nsq.NewConfig())
	require.NoError(s.T, err)
}

// AppConfig points a default configuration at the suite's containers.
func (s *IntegrationSuite) AppConfig() *config.Config {
	_, b, _, _ := runtime.Caller(0)
	return &config.Config{
		ServerPort:                 8081,
		IntakeTimeout:              10 * time.Second,
		IntakeMaxAttempts:          1,
		AnalyzerProvider:           config.ProviderGroq,
		NotifyChannel:              config.NotifyNone,
		DispatchMode:               config.DispatchQueue,
		EnableQueue:                true,
		NSQDHost:                   s.NSQAddr,
		NSQDHTTP:                   s.NSQHTTP,
		DBHost:                     s.pgHost,
		DBPort:                     s.pgPort,
		DBUser:                     "test",
		DBPass:                     "test",
		DBName:                     "decoder_test",
		MigrationPath:              fmt.Sprintf("file://%s/../../migrations", filepath.Dir(b)),
		AuditLogPath:               filepath.Join(s.T.TempDir(), "publish.log"),
		BootstrapRetryAttempts:     3,
		BootstrapRetryDelaySeconds: 1,
	}
}

func (s *IntegrationSuite) Teardown() {
	ctx := context.Background()
	if s.NSQ != nil {
		s.NSQ.Stop()
	}
	if s.DB != nil {
		s.DB.Close()
	}
	if s.pgContainer != nil {
		s.pgContainer.Terminate(ctx)
	}
	if s.nsqContainer != nil {
		s.nsqContainer.Terminate(ctx)
	}
}
