// internal/common/camunda/client.go

// Package camunda wraps the Zeebe gRPC client for the membership process
// engine: dialing with a topology probe, worker registration, and mapping
// broker failures into the shared error taxonomy.
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"membership-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type Client struct {
	client  zbc.Client
	address string
	timeout time.Duration
}

// NewClient dials the Zeebe gateway and verifies the broker answers a
// topology request before handing the client out. A gateway that accepts
// the gRPC connection but has no reachable broker fails here, not on the
// first job poll.
func NewClient(address string) (*Client, error) {
	return NewClientWithTimeout(address, 10*time.Second)
}

func NewClientWithTimeout(address string, connectTimeout time.Duration) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client for %s: %w", address, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, MapBrokerError(err, "topology probe")
	}

	return &Client{
		client:  zeebeClient,
		address: address,
		timeout: connectTimeout,
	}, nil
}

// GetClient returns the raw Zeebe client for worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the broker for its topology; used by the readiness probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return MapBrokerError(err, "health check")
	}
	return nil
}

// IsTransientBrokerError reports whether a broker failure is worth retrying.
func IsTransientBrokerError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// MapBrokerError converts a Zeebe failure into a StandardError so callers
// see the same taxonomy the job handlers emit.
func MapBrokerError(err error, operation string) error {
	msg := strings.ToLower(err.Error())
	wrapped := fmt.Errorf("zeebe %s: %w", operation, err)

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", wrapped)
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "unauthorized"):
		return errors.NewAuthenticationError(wrapped.Error())
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}
