// Package aerospike constructs the Aerospike client for the service.
package aerospike

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	aero "github.com/aerospike/aerospike-client-go/v7"
)

// Namespace returns the Aerospike namespace records live in, defaulting to
// "test" (the original deployment's namespace).
func Namespace() string {
	if ns := os.Getenv("AEROSPIKE_NAMESPACE"); ns != "" {
		return ns
	}
	return "test"
}

// NewAerospikeClient builds an Aerospike client from AEROSPIKE_HOST /
// AEROSPIKE_PORT. Cluster discovery happens at construction, so a
// returned client is connected.
func NewAerospikeClient() (*aero.Client, error) {
	host := os.Getenv("AEROSPIKE_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := 3000
	if p := os.Getenv("AEROSPIKE_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid AEROSPIKE_PORT %q: %w", p, err)
		}
		port = parsed
	}

	client, err := aero.NewClient(host, port)
	if err != nil {
		slog.Error("Aerospike connection failed", "host", host, "port", port, "error", err)
		return nil, err
	}

	slog.Info("Aerospike connection successful", "host", host, "port", port)
	return client, nil
}
