// Package testinternals starts the backing services used by integration tests.
package testinternals

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/cheongchoi112/ai-fitness-api/internal/db"
)

const TestDBName = "ai_fitness_test"

type Postgres struct {
	Port string
	Pool *pgxpool.Pool
	// DB is a plain database/sql handle, used to assert on stored rows directly.
	DB *sql.DB

	resource *dockertest.Resource
}

// NewDockerPool uses a sensible default on windows (tcp/http) and linux/osx (socket).
func NewDockerPool() (*dockertest.Pool, error) {
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %w", err)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %w", err)
	}
	return dockerPool, nil
}

// StartPostgres runs a throwaway postgres container with the service schema applied.
func StartPostgres(ctx context.Context, dockerPool *dockertest.Pool) (*Postgres, error) {
	pgResource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + TestDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, fmt.Errorf("dockerpool run postgres: %w", err)
	}

	pg := &Postgres{
		Port:     pgResource.GetPort("5432/tcp"),
		resource: pgResource,
	}

	pg.Pool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pg.Port,
		DBName: TestDBName,
	})
	if err != nil {
		pg.Close()
		return nil, err
	}

	if err := dockerPool.Retry(func() error {
		return pg.Pool.Ping(ctx)
	}); err != nil {
		pg.Close()
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	if err := db.EnsureSchema(ctx, pg.Pool); err != nil {
		pg.Close()
		return nil, err
	}

	pg.DB, err = sql.Open("postgres", fmt.Sprintf(
		"postgres://postgres@localhost:%s/%s?sslmode=disable",
		pg.Port, TestDBName,
	))
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("open sql db: %w", err)
	}

	return pg, nil
}

// Truncate removes all rows, tests call it to start from an empty store.
func (p *Postgres) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `TRUNCATE user_profile, fitness_plan, weight_entry, workout_entry;`)
	return err
}

func (p *Postgres) Close() {
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			log.Printf("postgres sql db close: %s\n", err)
		}
	}
	if p.Pool != nil {
		p.Pool.Close()
	}
	if err := p.resource.Close(); err != nil {
		log.Printf("postgres teardown: %s\n", err)
	}
}

// StartRedis runs a throwaway redis container and returns its port and a teardown func.
func StartRedis(dockerPool *dockertest.Pool) (string, func(), error) {
	redisResource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", nil, fmt.Errorf("run redis: %w", err)
	}

	teardown := func() {
		if err := redisResource.Close(); err != nil {
			log.Printf("redis teardown: %s\n", err)
		}
	}
	return redisResource.GetPort("6379/tcp"), teardown, nil
}
