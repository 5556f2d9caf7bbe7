package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lifeos-app/lifeos/internal/models"
)

// PortabilityStore reads and writes a user's whole data graph.
type PortabilityStore struct {
	Base
}

// NewPortabilityStore creates a new PortabilityStore.
func NewPortabilityStore(base Base) *PortabilityStore {
	return &PortabilityStore{Base: base}
}

// collect reads every row of kind visible to userID into a slice of T.
func collect[T any](ctx context.Context, tx pgx.Tx, kind models.Kind, userID string) ([]T, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var args []any
	if t.userScoped {
		args = append(args, userID)
	}

	rows, err := tx.Query(ctx, t.selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.name, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.name, err)
	}

	return items, nil
}

// ExportUserData reads the user's profile and every collection inside one
// repeatable-read transaction. Any failure aborts the whole export.
func (s *PortabilityStore) ExportUserData(ctx context.Context, userID string) (*models.SnapshotData, error) {
	if err := checkUserID(userID); err != nil {
		return nil, models.ErrUserNotFound
	}

	ctx, cancel := withBulkTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("export user data: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	profile, err := readProfile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	d := &models.SnapshotData{Profile: profile}

	if err := readCollections(ctx, tx, userID, d); err != nil {
		return nil, fmt.Errorf("export user data: %w", err)
	}

	xp, err := collect[models.UserXP](ctx, tx, models.KindUserXP, userID)
	if err != nil {
		return nil, fmt.Errorf("export user data: %w", err)
	}

	if len(xp) > 0 {
		d.UserXP = &xp[0]
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing export: %w", err)
	}

	return d, nil
}

// reader loads one collection inside an export transaction.
type reader func(ctx context.Context, tx pgx.Tx, userID string) error

func into[T any](dst *[]T, kind models.Kind) reader {
	return func(ctx context.Context, tx pgx.Tx, userID string) error {
		items, err := collect[T](ctx, tx, kind, userID)
		if err != nil {
			return err
		}

		*dst = items

		return nil
	}
}

func readCollections(ctx context.Context, tx pgx.Tx, userID string, d *models.SnapshotData) error {
	readers := []reader{
		into(&d.Dimensions, models.KindDimensions),
		into(&d.MetricDefinitions, models.KindMetricDefinitions),
		into(&d.ScoreDefinitions, models.KindScoreDefinitions),
		into(&d.TaxProfiles, models.KindTaxProfiles),
		into(&d.LongevityModels, models.KindLongevityModels),
		into(&d.Accounts, models.KindAccounts),
		into(&d.Milestones, models.KindMilestones),
		into(&d.Tasks, models.KindTasks),
		into(&d.Streaks, models.KindStreaks),
		into(&d.MetricRecords, models.KindMetricRecords),
		into(&d.ScoreRecords, models.KindScoreRecords),
		into(&d.IncomeSources, models.KindIncomeSources),
		into(&d.ExpenseDefinitions, models.KindExpenseDefinitions),
		into(&d.InvestmentContributions, models.KindInvestmentContributions),
		into(&d.FinancialGoals, models.KindFinancialGoals),
		into(&d.FxRates, models.KindFxRates),
		into(&d.Transactions, models.KindTransactions),
		into(&d.SimulationScenarios, models.KindSimulationScenarios),
		into(&d.SimulationEvents, models.KindSimulationEvents),
		into(&d.AccountProjections, models.KindAccountProjections),
		into(&d.NetWorthProjections, models.KindNetWorthProjections),
		into(&d.LongevitySnapshots, models.KindLongevitySnapshots),
		into(&d.Achievements, models.KindAchievements),
		into(&d.UserAchievements, models.KindUserAchievements),
		into(&d.NetWorthSnapshots, models.KindNetWorthSnapshots),
	}

	for _, read := range readers {
		if err := read(ctx, tx, userID); err != nil {
			return err
		}
	}

	return nil
}

// defaultAssumptions is the subset of users.default_assumptions carried in a profile.
type defaultAssumptions struct {
	InflationRateAnnual *float64 `json:"inflationRateAnnual"`
	DefaultGrowthRate   *float64 `json:"defaultGrowthRate"`
	RetirementAge       *int     `json:"retirementAge"`
}

func readProfile(ctx context.Context, tx pgx.Tx, userID string) (*models.Profile, error) {
	var (
		p           models.Profile
		dob         *models.Date
		assumptions []byte
	)

	err := tx.QueryRow(ctx, `
		SELECT email, username, home_currency, date_of_birth,
		       life_expectancy_baseline, default_assumptions
		FROM users
		WHERE id = $1
	`, userID).Scan(&p.Email, &p.Username, &p.HomeCurrency, &dob, &p.LifeExpectancyBaseline, &assumptions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	p.DateOfBirth = dob

	// Unparseable assumptions export as nulls.
	var da defaultAssumptions
	if json.Unmarshal(assumptions, &da) == nil {
		p.InflationRateAnnual = da.InflationRateAnnual
		p.DefaultGrowthRate = da.DefaultGrowthRate
		p.RetirementAge = da.RetirementAge
	}

	return &p, nil
}
