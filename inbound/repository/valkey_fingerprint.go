package repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/AzielCF/az-devocional/infrastructure/valkey"
)

// keySetter is the subset of the valkey client used for claims.
type keySetter interface {
	Key(parts ...string) string
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// ValkeyFingerprintClaimer reserva huellas de mensajes sin provider id por
// la duración de la ventana de deduplicación.
type ValkeyFingerprintClaimer struct {
	client keySetter
}

func NewValkeyFingerprintClaimer(client *valkey.Client) *ValkeyFingerprintClaimer {
	return &ValkeyFingerprintClaimer{client: client}
}

func (c *ValkeyFingerprintClaimer) Claim(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	sum := sha1.Sum([]byte(fingerprint))
	key := c.client.Key("dedup", hex.EncodeToString(sum[:]))
	return c.client.SetIfAbsent(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl)
}
