package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AzielCF/az-devocional/core/config"
	valkeylib "github.com/valkey-io/valkey-go"
)

const defaultConnectTimeout = 5 * time.Second

// Client wraps valkey-go with the key prefix used by this deployment.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewClient connects and pings the server before returning.
func NewClient(cfg config.DatabaseConfig) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.ValkeyAddress},
		SelectDB:    cfg.ValkeyDB,
	}
	if cfg.ValkeyPassword != "" {
		opts.Password = cfg.ValkeyPassword
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s: %w", cfg.ValkeyAddress, err)
	}

	return NewClientFrom(inner, cfg.ValkeyKeyPrefix), nil
}

// NewClientFrom wraps an already connected client.
func NewClientFrom(inner valkeylib.Client, prefix string) *Client {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &Client{inner: inner, keyPrefix: prefix}
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins parts with ":" behind the prefix.
// Key("dedup", "5511") -> "devocional:dedup:5511"
func (c *Client) Key(parts ...string) string {
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// SetIfAbsent runs SET key value NX EX ttl and reports whether the key was
// written by this call.
func (c *Client) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	cmd := c.inner.B().Set().
		Key(key).
		Value(value).
		Nx().
		Ex(ttl).
		Build()

	err := c.inner.Do(ctx, cmd).Error()
	if err == nil {
		return true, nil
	}
	if valkeylib.IsValkeyNil(err) {
		return false, nil
	}
	return false, err
}
