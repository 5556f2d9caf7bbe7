package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/models"
)

// UserExists reports whether a users row exists for userID.
func (s *PortabilityStore) UserExists(ctx context.Context, userID string) (bool, error) {
	if checkUserID(userID) != nil {
		return false, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.Pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}

	return exists, nil
}

// UpdateProfile applies the profile scalars to the users row. Empty strings
// keep the stored value; assumptions are merged into default_assumptions.
func (s *PortabilityStore) UpdateProfile(ctx context.Context, userID string, p models.Profile) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	assumptions := map[string]any{}
	if p.InflationRateAnnual != nil {
		assumptions["inflationRateAnnual"] = *p.InflationRateAnnual
	}

	if p.DefaultGrowthRate != nil {
		assumptions["defaultGrowthRate"] = *p.DefaultGrowthRate
	}

	if p.RetirementAge != nil {
		assumptions["retirementAge"] = *p.RetirementAge
	}

	assumptionsJSON, err := json.Marshal(assumptions)
	if err != nil {
		return fmt.Errorf("encoding default assumptions: %w", err)
	}

	tag, err := s.Pool.Exec(ctx, `
		UPDATE users SET
			email                    = COALESCE(NULLIF($2, ''), email),
			username                 = COALESCE(NULLIF($3, ''), username),
			home_currency            = COALESCE(NULLIF($4, ''), home_currency),
			date_of_birth            = COALESCE($5, date_of_birth),
			life_expectancy_baseline = CASE WHEN $6::numeric > 0 THEN $6 ELSE life_expectancy_baseline END,
			default_assumptions      = default_assumptions || $7::jsonb,
			updated_at               = now()
		WHERE id = $1
	`, userID, p.Email, p.Username, p.HomeCurrency, p.DateOfBirth, p.LifeExpectancyBaseline, string(assumptionsJSON))
	if err != nil {
		return fmt.Errorf("updating profile: %w", mapPgError(err))
	}

	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// DeleteUserData deletes every user-scoped row in one transaction, children
// first. Shared catalog tables are left untouched.
func (s *PortabilityStore) DeleteUserData(ctx context.Context, userID string) error {
	ctx, cancel := withBulkTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	for _, kind := range deleteOrder {
		t, err := tableFor(kind)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{t.name}.Sanitize()+" WHERE user_id = $1", userID)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", t.name, err)
		}

		s.Log.WithFields(logrus.Fields{"table": t.name, "rows": tag.RowsAffected()}).Debug("deleted user rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

// FindID returns the ID of the first row of kind matching key.
func (s *PortabilityStore) FindID(ctx context.Context, kind models.Kind, key models.NaturalKey) (string, bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return "", false, err
	}

	if len(key.Columns) == 0 || len(key.Columns) != len(key.Values) {
		return "", false, fmt.Errorf("%s: malformed natural key %v", kind, key.Columns)
	}

	conds := make([]string, len(key.Columns))
	for i, c := range key.Columns {
		conds[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{c}.Sanitize(), i+1)
	}

	query := fmt.Sprintf("SELECT id FROM %s WHERE %s ORDER BY id LIMIT 1",
		pgx.Identifier{t.name}.Sanitize(), strings.Join(conds, " AND "))

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id string

	err = s.Pool.QueryRow(ctx, query, key.Values...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("finding %s by %s: %w", t.name, key, err)
	}

	return id, true, nil
}

// IDExists reports whether any row of kind, owned by anyone, has id.
func (s *PortabilityStore) IDExists(ctx context.Context, kind models.Kind, id string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool

	query := "SELECT EXISTS(SELECT 1 FROM " + pgx.Identifier{t.name}.Sanitize() + " WHERE id = $1)"
	if err := s.Pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s id: %w", t.name, err)
	}

	return exists, nil
}

// ListIDs returns the IDs of every row of kind owned by userID. Shared
// catalog kinds return every ID.
func (s *PortabilityStore) ListIDs(ctx context.Context, userID string, kind models.Kind) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := "SELECT id FROM " + pgx.Identifier{t.name}.Sanitize()

	var args []any
	if t.userScoped {
		query += " WHERE user_id = $1"
		args = append(args, userID)
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", t.name, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning %s ids: %w", t.name, err)
	}

	return ids, nil
}

// ApplyBatch applies writes in order inside one transaction.
func (s *PortabilityStore) ApplyBatch(ctx context.Context, userID string, writes []models.Write) error {
	if len(writes) == 0 {
		return nil
	}

	ctx, cancel := withBulkTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	for i := range writes {
		if err := applyWrite(ctx, tx, userID, &writes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch: %w", mapPgError(err))
	}

	return nil
}

func applyWrite(ctx context.Context, tx pgx.Tx, userID string, w *models.Write) error {
	t, err := tableFor(w.Kind)
	if err != nil {
		return err
	}

	switch w.Op {
	case models.OpRekey:
		query := "UPDATE " + pgx.Identifier{t.name}.Sanitize() + " SET id = $1 WHERE id = $2"
		if _, err := tx.Exec(ctx, query, w.ID, w.OldID); err != nil {
			return fmt.Errorf("re-keying %s %s to %s: %w", t.name, w.OldID, w.ID, mapPgError(err))
		}

		return nil

	case models.OpInsert, models.OpUpdate:
		vals, err := t.values(w.Record)
		if err != nil {
			return err
		}

		if w.Op == models.OpInsert {
			args := []any{w.ID}
			if t.userScoped {
				args = append(args, userID)
			}

			if _, err := tx.Exec(ctx, t.insertSQL, append(args, vals...)...); err != nil {
				return fmt.Errorf("inserting %s %s: %w", t.name, w.ID, mapPgError(err))
			}

			return nil
		}

		args := append([]any{w.ID}, vals...)
		if t.userScoped {
			args = append(args, userID)
		}

		tag, err := tx.Exec(ctx, t.updateSQL, args...)
		if err != nil {
			return fmt.Errorf("updating %s %s: %w", t.name, w.ID, mapPgError(err))
		}

		if tag.RowsAffected() == 0 {
			return fmt.Errorf("updating %s %s: row not found", t.name, w.ID)
		}

		return nil

	default:
		return fmt.Errorf("unsupported write op %s", w.Op)
	}
}

// Publish sends a portability event to every server instance.
func (s *PortabilityStore) Publish(userID, eventType string, data any) {
	s.notify(eventType, userID, data)
}
