package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gfcbot/rulekeeper/internal/dbpool"
)

// ErrUnknownAPIKey is returned when no active client matches an API key.
var ErrUnknownAPIKey = errors.New("unknown api key")

// ClientStore handles API client lookups (API key -> client name).
type ClientStore struct {
	Pool *dbpool.Pool
}

// NewClientStore creates a new ClientStore.
func NewClientStore(pool *dbpool.Pool) *ClientStore {
	return &ClientStore{Pool: pool}
}

// HashAPIKey returns the stored representation of an API key.
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetClientByAPIKey returns the name of the non-revoked client owning apiKey.
func (s *ClientStore) GetClientByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var name string

	err := s.Pool.QueryRow(ctx,
		"SELECT name FROM api_clients WHERE api_key_hash = $1 AND revoked_at IS NULL",
		HashAPIKey(apiKey),
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUnknownAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("looking up client by API key: %w", err)
	}

	return name, nil
}

// CreateClient registers a client and returns its id.
func (s *ClientStore) CreateClient(ctx context.Context, name, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id string

	err := s.Pool.QueryRow(ctx,
		"INSERT INTO api_clients (name, api_key_hash) VALUES ($1, $2) RETURNING id",
		name, HashAPIKey(apiKey),
	).Scan(&id)
	if err != nil {
		return "", wrapDBError("creating api client", err)
	}

	return id, nil
}

// RevokeClient revokes every active key of the named client and returns how many were revoked.
func (s *ClientStore) RevokeClient(ctx context.Context, name string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		"UPDATE api_clients SET revoked_at = NOW() WHERE name = $1 AND revoked_at IS NULL",
		name,
	)
	if err != nil {
		return 0, wrapDBError("revoking api client", err)
	}

	return int(tag.RowsAffected()), nil
}
