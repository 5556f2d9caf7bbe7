package store_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/db"
	"github.com/lifeos-app/lifeos/internal/db/migrations"
	"github.com/lifeos-app/lifeos/internal/dbpool"
	"github.com/lifeos-app/lifeos/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestStore creates a store with a fresh test user, cleaned up after the test.
func setupTestStore(t *testing.T) (_ *store.PortabilityStore, userID, apiKey string) {
	t.Helper()

	env := getTestEnv(t)
	userID = uuid.New().String()
	ctx := context.Background()

	apiKey = "test-key-" + userID
	hash := sha256.Sum256([]byte(apiKey))

	_, err := env.pool.Exec(ctx,
		"INSERT INTO users (id, email, username, api_key_hash) VALUES ($1, $2, $3, $4)",
		userID, fmt.Sprintf("%s@example.test", userID[:8]), "tester", hex.EncodeToString(hash[:]),
	)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	t.Cleanup(func() {
		// User-scoped rows cascade.
		env.pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", userID) //nolint:errcheck // best-effort cleanup
	})

	return store.NewPortabilityStore(store.Base{Pool: env.pool, Log: env.log}), userID, apiKey
}

func TestGetUserByAPIKey(t *testing.T) {
	s, userID, apiKey := setupTestStore(t)
	ctx := context.Background()

	got, err := s.GetUserByAPIKey(ctx, apiKey)
	if err != nil {
		t.Fatalf("GetUserByAPIKey: %v", err)
	}

	if got != userID {
		t.Errorf("got %s, want %s", got, userID)
	}

	if _, err := s.GetUserByAPIKey(ctx, "wrong-key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestUserExists(t *testing.T) {
	s, userID, _ := setupTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct {
		id   string
		want bool
	}{
		{userID, true},
		{uuid.New().String(), false},
		{"not-a-uuid", false},
	} {
		got, err := s.UserExists(ctx, tc.id)
		if err != nil {
			t.Fatalf("UserExists(%s): %v", tc.id, err)
		}

		if got != tc.want {
			t.Errorf("UserExists(%s) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
