package service

import (
	"context"

	"github.com/lifeos-app/lifeos/internal/models"
)

// checkpoint groups the steps whose writes commit together. Later steps
// resolve references against rows committed by earlier checkpoints.
type checkpoint struct {
	name  string
	steps []runner
}

// Checkpoint names.
const (
	checkpointDimensions   = "dimensions"
	checkpointBase         = "base"
	checkpointRecords      = "records"
	checkpointAchievements = "achievements"
	checkpointProgress     = "progress"
)

var importPlan = []checkpoint{
	{name: checkpointDimensions, steps: []runner{
		step[models.Dimension, *models.Dimension]{
			kind: models.KindDimensions, rekey: true,
			rows: func(d *models.SnapshotData) []models.Dimension { return d.Dimensions },
		},
	}},
	{name: checkpointBase, steps: []runner{
		step[models.MetricDefinition, *models.MetricDefinition]{
			kind: models.KindMetricDefinitions, rekey: true,
			rows: func(d *models.SnapshotData) []models.MetricDefinition { return d.MetricDefinitions },
			remap: func(ctx context.Context, ic *importContext, r *models.MetricDefinition) (bool, error) {
				return true, ic.optional(ctx, models.KindDimensions, &r.DimensionID)
			},
		},
		step[models.ScoreDefinition, *models.ScoreDefinition]{
			kind: models.KindScoreDefinitions,
			rows: func(d *models.SnapshotData) []models.ScoreDefinition { return d.ScoreDefinitions },
			remap: func(ctx context.Context, ic *importContext, r *models.ScoreDefinition) (bool, error) {
				return true, ic.optional(ctx, models.KindDimensions, &r.DimensionID)
			},
		},
		step[models.TaxProfile, *models.TaxProfile]{
			kind: models.KindTaxProfiles,
			rows: func(d *models.SnapshotData) []models.TaxProfile { return d.TaxProfiles },
		},
		step[models.LongevityModel, *models.LongevityModel]{
			kind: models.KindLongevityModels,
			rows: func(d *models.SnapshotData) []models.LongevityModel { return d.LongevityModels },
		},
		step[models.Account, *models.Account]{
			kind: models.KindAccounts,
			rows: func(d *models.SnapshotData) []models.Account { return d.Accounts },
		},
	}},
	{name: checkpointRecords, steps: []runner{
		step[models.Milestone, *models.Milestone]{
			kind:  models.KindMilestones,
			rows:  func(d *models.SnapshotData) []models.Milestone { return d.Milestones },
			remap: remapMilestone,
		},
		step[models.Task, *models.Task]{
			kind:  models.KindTasks,
			rows:  func(d *models.SnapshotData) []models.Task { return d.Tasks },
			remap: remapTask,
		},
		step[models.Streak, *models.Streak]{
			kind:  models.KindStreaks,
			rows:  func(d *models.SnapshotData) []models.Streak { return d.Streaks },
			remap: remapStreak,
		},
		step[models.MetricRecord, *models.MetricRecord]{
			kind: models.KindMetricRecords,
			rows: func(d *models.SnapshotData) []models.MetricRecord { return d.MetricRecords },
		},
		step[models.ScoreRecord, *models.ScoreRecord]{
			kind: models.KindScoreRecords,
			rows: func(d *models.SnapshotData) []models.ScoreRecord { return d.ScoreRecords },
		},
		step[models.IncomeSource, *models.IncomeSource]{
			kind:  models.KindIncomeSources,
			rows:  func(d *models.SnapshotData) []models.IncomeSource { return d.IncomeSources },
			remap: remapIncomeSource,
		},
		step[models.ExpenseDefinition, *models.ExpenseDefinition]{
			kind:  models.KindExpenseDefinitions,
			rows:  func(d *models.SnapshotData) []models.ExpenseDefinition { return d.ExpenseDefinitions },
			remap: remapExpense,
		},
		step[models.InvestmentContribution, *models.InvestmentContribution]{
			kind:  models.KindInvestmentContributions,
			rows:  func(d *models.SnapshotData) []models.InvestmentContribution { return d.InvestmentContributions },
			remap: remapContribution,
		},
		step[models.FinancialGoal, *models.FinancialGoal]{
			kind: models.KindFinancialGoals,
			rows: func(d *models.SnapshotData) []models.FinancialGoal { return d.FinancialGoals },
		},
		step[models.FxRate, *models.FxRate]{
			kind: models.KindFxRates,
			rows: func(d *models.SnapshotData) []models.FxRate { return d.FxRates },
		},
		step[models.Transaction, *models.Transaction]{
			kind:  models.KindTransactions,
			rows:  func(d *models.SnapshotData) []models.Transaction { return d.Transactions },
			remap: remapTransaction,
		},
		step[models.SimulationScenario, *models.SimulationScenario]{
			kind: models.KindSimulationScenarios,
			rows: func(d *models.SnapshotData) []models.SimulationScenario { return d.SimulationScenarios },
		},
		step[models.SimulationEvent, *models.SimulationEvent]{
			kind:  models.KindSimulationEvents,
			rows:  func(d *models.SnapshotData) []models.SimulationEvent { return d.SimulationEvents },
			remap: remapSimulationEvent,
		},
		step[models.AccountProjection, *models.AccountProjection]{
			kind:  models.KindAccountProjections,
			rows:  func(d *models.SnapshotData) []models.AccountProjection { return d.AccountProjections },
			remap: remapAccountProjection,
		},
		step[models.NetWorthProjection, *models.NetWorthProjection]{
			kind: models.KindNetWorthProjections,
			rows: func(d *models.SnapshotData) []models.NetWorthProjection { return d.NetWorthProjections },
			remap: func(ctx context.Context, ic *importContext, r *models.NetWorthProjection) (bool, error) {
				return ic.required(ctx, models.KindSimulationScenarios, &r.ScenarioID)
			},
		},
		step[models.LongevitySnapshot, *models.LongevitySnapshot]{
			kind: models.KindLongevitySnapshots,
			rows: func(d *models.SnapshotData) []models.LongevitySnapshot { return d.LongevitySnapshots },
		},
		step[models.NetWorthSnapshot, *models.NetWorthSnapshot]{
			kind: models.KindNetWorthSnapshots,
			rows: func(d *models.SnapshotData) []models.NetWorthSnapshot { return d.NetWorthSnapshots },
		},
	}},
	{name: checkpointAchievements, steps: []runner{
		step[models.Achievement, *models.Achievement]{
			kind: models.KindAchievements,
			rows: func(d *models.SnapshotData) []models.Achievement { return d.Achievements },
		},
	}},
	{name: checkpointProgress, steps: []runner{
		step[models.UserAchievement, *models.UserAchievement]{
			kind:  models.KindUserAchievements,
			rows:  func(d *models.SnapshotData) []models.UserAchievement { return d.UserAchievements },
			remap: remapUserAchievement,
		},
		step[models.UserXP, *models.UserXP]{
			kind: models.KindUserXP,
			rows: func(d *models.SnapshotData) []models.UserXP {
				if d.UserXP == nil {
					return nil
				}

				return []models.UserXP{*d.UserXP}
			},
		},
	}},
}

func remapMilestone(ctx context.Context, ic *importContext, r *models.Milestone) (bool, error) {
	return ic.required(ctx, models.KindDimensions, &r.DimensionID)
}

func remapTask(ctx context.Context, ic *importContext, r *models.Task) (bool, error) {
	if err := ic.optional(ctx, models.KindDimensions, &r.DimensionID); err != nil {
		return false, err
	}

	return true, ic.optional(ctx, models.KindMilestones, &r.MilestoneID)
}

func remapStreak(ctx context.Context, ic *importContext, r *models.Streak) (bool, error) {
	if r.TaskID == nil || *r.TaskID == "" {
		return true, nil
	}

	return ic.requiredRef(ctx, models.KindTasks, &r.TaskID)
}

func remapIncomeSource(ctx context.Context, ic *importContext, r *models.IncomeSource) (bool, error) {
	if err := ic.optional(ctx, models.KindTaxProfiles, &r.TaxProfileID); err != nil {
		return false, err
	}

	return true, ic.optional(ctx, models.KindAccounts, &r.TargetAccountID)
}

func remapExpense(ctx context.Context, ic *importContext, r *models.ExpenseDefinition) (bool, error) {
	if err := ic.optional(ctx, models.KindAccounts, &r.LinkedAccountID); err != nil {
		return false, err
	}

	return true, ic.optional(ctx, models.KindAccounts, &r.EndConditionAccountID)
}

func remapContribution(ctx context.Context, ic *importContext, r *models.InvestmentContribution) (bool, error) {
	for _, ref := range []**string{&r.TargetAccountID, &r.SourceAccountID, &r.EndConditionAccountID} {
		if err := ic.optional(ctx, models.KindAccounts, ref); err != nil {
			return false, err
		}
	}

	return true, nil
}

// remapTransaction requires at least one account, and every account given
// must resolve.
func remapTransaction(ctx context.Context, ic *importContext, r *models.Transaction) (bool, error) {
	present := 0

	for _, ref := range []**string{&r.SourceAccountID, &r.TargetAccountID} {
		if *ref == nil || **ref == "" {
			*ref = nil
			continue
		}

		present++

		ok, err := ic.requiredRef(ctx, models.KindAccounts, ref)
		if err != nil || !ok {
			return false, err
		}
	}

	return present > 0, nil
}

func remapSimulationEvent(ctx context.Context, ic *importContext, r *models.SimulationEvent) (bool, error) {
	ok, err := ic.required(ctx, models.KindSimulationScenarios, &r.ScenarioID)
	if err != nil || !ok {
		return false, err
	}

	if r.AffectedAccountID == nil || *r.AffectedAccountID == "" {
		r.AffectedAccountID = nil
		return true, nil
	}

	return ic.requiredRef(ctx, models.KindAccounts, &r.AffectedAccountID)
}

func remapAccountProjection(ctx context.Context, ic *importContext, r *models.AccountProjection) (bool, error) {
	ok, err := ic.required(ctx, models.KindSimulationScenarios, &r.ScenarioID)
	if err != nil || !ok {
		return false, err
	}

	return ic.required(ctx, models.KindAccounts, &r.AccountID)
}

// remapUserAchievement resolves the achievement code to its target ID.
// Unknown codes skip the row.
func remapUserAchievement(ctx context.Context, ic *importContext, r *models.UserAchievement) (bool, error) {
	key, _ := (&models.Achievement{Code: r.AchievementCode}).NaturalKey(ic.userID)

	if id, ok := ic.seen[models.KindAchievements][key.String()]; ok {
		r.AchievementID = id
		return true, nil
	}

	id, found, err := ic.store.FindID(ctx, models.KindAchievements, key)
	if err != nil || !found {
		return false, err
	}

	r.AchievementID = id

	return true, nil
}
