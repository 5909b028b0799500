//go:build integration

// Package testinfra starts throwaway Postgres and Redis containers for the
// integration tests. Tests skip when no Docker daemon is reachable.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage = "postgres:16-alpine"
	RedisImage    = "redis:7-alpine"

	postgresPort = "5432/tcp"
	redisPort    = "6379/tcp"

	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "comp0022_test"

	startTimeout = 90 * time.Second
)

// SkipIfNoDocker skips the test when the Docker daemon is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// Endpoint is a started container and the host:port it is reachable on.
type Endpoint struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// Addr returns host:port.
func (e *Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// StartPostgres runs a Postgres container and terminates it when the test
// ends.
func StartPostgres(t *testing.T) *Endpoint {
	t.Helper()
	SkipIfNoDocker(t)

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     PostgresUser,
			"POSTGRES_PASSWORD": PostgresPassword,
			"POSTGRES_DB":       PostgresDB,
		},
		// The entrypoint restarts the server once after initdb.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeoutDefault(startTimeout),
	}
	return start(t, req, postgresPort)
}

// StartRedis runs a Redis container and terminates it when the test ends.
func StartRedis(t *testing.T) *Endpoint {
	t.Helper()
	SkipIfNoDocker(t)

	req := testcontainers.ContainerRequest{
		Image:        RedisImage,
		ExposedPorts: []string{redisPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort(redisPort),
		).WithStartupTimeoutDefault(startTimeout),
	}
	return start(t, req, redisPort)
}

func start(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) *Endpoint {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	return &Endpoint{Container: container, Host: host, Port: mapped.Int()}
}
