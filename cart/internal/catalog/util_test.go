package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
)

var migrations = []string{
	"20250301090000_create_table_products.up.sql",
	"20250301091000_create_table_carts.up.sql",
	"20250301092000_create_table_free_shipping_rules.up.sql",
	"20250301093000_create_role_storefront_public.up.sql",
}

// setupDatabase returns a pool connected as the service role and a pool connected as a
// member of the public storefront role.
func setupDatabase(t *testing.T, c context.Context) (service *pgxpool.Pool, public *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	scripts := make([]string, 0, len(migrations)+1)
	for _, migration := range migrations {
		scripts = append(scripts, filepath.Join("..", "..", "..", "migrations", migration))
	}
	scripts = append(scripts, filepath.Join("testdata", "catalog.seed.sql"))

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(scripts...),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Errorf("failed terminating postgres container with error: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	newPool := func(user, password string) *pgxpool.Pool {
		pgConfig, err := pgxpool.ParseConfig(pgConnStr)
		if err != nil {
			t.Fatalf("failed parsing postgres config with error: %s", err)
		}
		pgConfig.ConnConfig.User = user
		pgConfig.ConnConfig.Password = password
		pgConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
			pgxuuid.Register(conn.TypeMap())
			return nil
		}
		pool, err := pgxpool.NewWithConfig(c, pgConfig)
		if err != nil {
			t.Fatalf("failed creating postgres pool with error: %s", err)
		}
		t.Cleanup(pool.Close)
		if err = pool.Ping(c); err != nil {
			t.Fatalf("failed ping postgres pool as user=%s with error: %s", user, err)
		}
		return pool
	}

	return newPool("postgres", "postgres"), newPool("storefront", "storefront")
}

func setupCache(t *testing.T, c context.Context) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	redisContainer, err := testRedis.Run(
		c,
		"redis:7.4.2-alpine3.21",
		testRedis.WithLogLevel(testRedis.LogLevelVerbose),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Errorf("failed terminating redis container with error: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(redisOpt)
	t.Cleanup(func() { client.Close() })
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return client
}
