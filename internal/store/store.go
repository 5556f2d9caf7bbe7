// Package store provides Postgres data access for LifeOS data portability.
//
// Entity tables are described once in a registry keyed by models.Kind
// (tables.go); export reads, natural-key lookups and checkpoint batches are
// all driven from it. Stores share the pool and logger through Base.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/dbpool"
	"github.com/lifeos-app/lifeos/internal/models"
)

const (
	defaultQueryTimeout = 30 * time.Second
	// bulkTimeout bounds whole-graph reads, deletes and checkpoint batches.
	bulkTimeout = 5 * time.Minute
)

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

func withBulkTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, bulkTimeout)
}

// checkUserID rejects IDs that cannot match a users row.
func checkUserID(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	return nil
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only repeatable-read transaction, so every
// query inside it sees the same snapshot.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// notify sends a pg_notify on the lifeos_events channel (best-effort, post-commit).
func (b *Base) notify(eventType, userID string, data any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(data)
	if err != nil {
		b.Log.WithError(err).Warn("failed to encode " + eventType + " event")
		return
	}

	payload, _ := json.Marshal(map[string]any{ //nolint:errcheck // static keys, cannot fail.
		"user_id": userID,
		"type":    eventType,
		"data":    json.RawMessage(raw),
	})
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify('lifeos_events', $1)", string(payload)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + eventType + " notification")
	}
}

// GetUserByAPIKey looks up a user ID by API key hash.
func (b *Base) GetUserByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	hash := sha256.Sum256([]byte(apiKey))
	apiKeyHash := hex.EncodeToString(hash[:])

	var userID string

	err := b.Pool.QueryRow(ctx, "SELECT id FROM users WHERE api_key_hash = $1", apiKeyHash).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("looking up user by API key: %w", err)
	}

	return userID, nil
}

// mapPgError translates constraint violations into model sentinels while
// keeping the driver error in the chain.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s: %w", models.ErrDuplicateKey, pgErr.ConstraintName, err)
	case "23503":
		return fmt.Errorf("foreign key violation on %s: %w", pgErr.ConstraintName, err)
	default:
		return err
	}
}
