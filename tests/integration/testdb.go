// Package integration runs the repositories against real PostgreSQL and
// MongoDB servers started with testcontainers. The tests are skipped with -short.
package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/infrastructure/logger"
	"github.com/webstack/backend/internal/infrastructure/migration"
	"github.com/webstack/backend/internal/infrastructure/mongodb"
	"github.com/webstack/backend/internal/infrastructure/persistence"
	"github.com/webstack/backend/migrations"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	mongoImage    = "mongo:7"
	startupWait   = 90 * time.Second
	testTimeout   = 2 * time.Minute
)

var (
	// Containers are shared by every test of the package
	containersMu   sync.Mutex
	postgresServer *tcpostgres.PostgresContainer
	mongoServer    testcontainers.Container
)

// TestMain terminates the shared containers once the package is done
func TestMain(m *testing.M) {
	code := m.Run()
	terminateContainers()
	os.Exit(code)
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped with -short")
	}
}

// NewPostgresDatabase opens a freshly migrated database in the shared PostgreSQL container.
// Every call gets its own database so tests never see each other's rows.
func NewPostgresDatabase(t *testing.T) *persistence.Database {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	container := startPostgres(t)
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbName := fmt.Sprintf("webstack_%d", time.Now().UnixNano())
	exitCode, _, err := container.Exec(ctx, []string{"psql", "-U", "postgres", "-c", "CREATE DATABASE " + dbName})
	require.NoError(t, err, "Failed to create test database")
	require.Zero(t, exitCode, "psql failed to create %s", dbName)

	cfg := &config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          dbName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}

	var gormLog gormlogger.Interface
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormLog = logger.NewGormLogger(zap.NewExample(), gormlogger.Info)
	}
	db, err := persistence.NewDatabase(cfg, gormLog)
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	migrator, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	return db
}

// NewMongoDatabase connects to a fresh database in the shared MongoDB container
func NewMongoDatabase(t *testing.T) *mongodb.Client {
	t.Helper()
	skipShort(t)
	ctx := context.Background()

	container := startMongo(t)
	endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	client, err := mongodb.Connect(ctx, config.MongoConfig{
		URI:            endpoint,
		Database:       fmt.Sprintf("webstack_%d", time.Now().UnixNano()),
		ConnectTimeout: 20 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err, "Failed to connect to MongoDB")
	require.NoError(t, mongodb.EnsureIndexes(ctx, client.Database()))

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database().Drop(cleanupCtx)
		_ = client.Close(cleanupCtx)
	})
	return client
}

func startPostgres(t *testing.T) *tcpostgres.PostgresContainer {
	t.Helper()
	containersMu.Lock()
	defer containersMu.Unlock()

	if postgresServer != nil {
		return postgresServer
	}
	container, err := tcpostgres.Run(context.Background(),
		postgresImage,
		tcpostgres.WithDatabase("postgres"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupWait)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	postgresServer = container
	return container
}

func startMongo(t *testing.T) testcontainers.Container {
	t.Helper()
	containersMu.Lock()
	defer containersMu.Unlock()

	if mongoServer != nil {
		return mongoServer
	}
	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mongoImage,
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Waiting for connections"),
				wait.ForListeningPort("27017/tcp"),
			).WithDeadline(startupWait),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start MongoDB container")
	mongoServer = container
	return container
}

func terminateContainers() {
	containersMu.Lock()
	defer containersMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if postgresServer != nil {
		_ = postgresServer.Terminate(ctx)
		postgresServer = nil
	}
	if mongoServer != nil {
		_ = mongoServer.Terminate(ctx)
		mongoServer = nil
	}
}
