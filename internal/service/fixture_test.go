package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/models"
)

const (
	userA = "a0000000-0000-4000-8000-000000000001"
	userB = "b0000000-0000-4000-8000-000000000002"
)

func ptr[T any](v T) *T { return &v }

func docID(n int) string { return fmt.Sprintf("00000000-0000-4000-8000-%012d", n) }

func assertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}

	if !strings.Contains(err.Error(), substr) {
		t.Errorf("expected error containing %q, got %q", substr, err.Error())
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

var fixtureTime = time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

// fixtureData holds one row of every kind, cross-referenced the way a real
// export is.
func fixtureData() models.SnapshotData {
	day := models.NewDate(2025, time.March, 1)

	return models.SnapshotData{
		Dimensions: []models.Dimension{
			{ID: docID(1), Code: "health", Name: "Health", DefaultWeight: 1, IsActive: true},
		},
		MetricDefinitions: []models.MetricDefinition{
			{ID: docID(2), DimensionID: ptr(docID(1)), Code: "steps", Name: "Steps", IsActive: true},
		},
		ScoreDefinitions: []models.ScoreDefinition{
			{ID: docID(3), DimensionID: ptr(docID(1)), Code: "fitness", Name: "Fitness", Formula: "steps/100", MaxScore: 100, IsActive: true},
		},
		TaxProfiles: []models.TaxProfile{
			{ID: docID(4), Name: "SA 2025", TaxYear: 2025, IsActive: true},
		},
		LongevityModels: []models.LongevityModel{
			{ID: docID(5), Code: "walking", Name: "Walking", IsActive: true},
		},
		Accounts: []models.Account{
			{ID: docID(6), Name: "Cheque", CurrentBalance: 50000, InitialBalance: 50000, BalanceUpdatedAt: fixtureTime, IsActive: true},
		},
		Milestones: []models.Milestone{
			{ID: docID(7), DimensionID: docID(1), Title: "Run 10k", CreatedAt: fixtureTime},
		},
		Tasks: []models.Task{
			{ID: docID(8), DimensionID: ptr(docID(1)), MilestoneID: ptr(docID(7)), Title: "Morning run", IsActive: true, CreatedAt: fixtureTime},
		},
		Streaks: []models.Streak{
			{ID: docID(9), TaskID: ptr(docID(8)), CurrentStreakLength: 3, IsActive: true},
		},
		MetricRecords: []models.MetricRecord{
			{ID: docID(10), MetricCode: "steps", ValueNumber: ptr(8000.0), RecordedAt: fixtureTime},
		},
		ScoreRecords: []models.ScoreRecord{
			{ID: docID(11), ScoreCode: "fitness", ScoreValue: 80, PeriodStart: fixtureTime, PeriodEnd: fixtureTime.AddDate(0, 0, 7), CalculatedAt: fixtureTime},
		},
		IncomeSources: []models.IncomeSource{
			{ID: docID(12), TaxProfileID: ptr(docID(4)), TargetAccountID: ptr(docID(6)), Name: "Salary", BaseAmount: 40000, IsActive: true},
		},
		ExpenseDefinitions: []models.ExpenseDefinition{
			{ID: docID(13), LinkedAccountID: ptr(docID(6)), Name: "Rent", AmountValue: ptr(12000.0), IsActive: true},
		},
		InvestmentContributions: []models.InvestmentContribution{
			{ID: docID(14), TargetAccountID: ptr(docID(6)), Name: "TFSA", Amount: 3000, IsActive: true},
		},
		FinancialGoals: []models.FinancialGoal{
			{ID: docID(15), Name: "Emergency fund", TargetAmount: 100000, Priority: 1, IsActive: true},
		},
		FxRates: []models.FxRate{
			{ID: docID(16), BaseCurrency: "usd", QuoteCurrency: "zar", Rate: 18.2, RateTimestamp: fixtureTime},
		},
		Transactions: []models.Transaction{
			{ID: docID(17), SourceAccountID: ptr(docID(6)), Amount: 250, TransactionDate: day, RecordedAt: fixtureTime},
		},
		SimulationScenarios: []models.SimulationScenario{
			{ID: docID(18), Name: "Baseline", StartDate: day, IsBaseline: true},
		},
		SimulationEvents: []models.SimulationEvent{
			{ID: docID(19), ScenarioID: docID(18), Name: "Bonus", AffectedAccountID: ptr(docID(6)), AmountValue: ptr(20000.0), IsActive: true},
		},
		AccountProjections: []models.AccountProjection{
			{ID: docID(20), ScenarioID: docID(18), AccountID: docID(6), PeriodDate: day, Balance: 52000},
		},
		NetWorthProjections: []models.NetWorthProjection{
			{ID: docID(21), ScenarioID: docID(18), PeriodDate: day, TotalAssets: 52000, NetWorth: 52000},
		},
		LongevitySnapshots: []models.LongevitySnapshot{
			{ID: docID(22), CalculatedAt: fixtureTime, BaselineLifeExpectancy: 78, EstimatedYearsAdded: 1.5, AdjustedLifeExpectancy: 79.5},
		},
		NetWorthSnapshots: []models.NetWorthSnapshot{
			{ID: docID(23), SnapshotDate: day, TotalAssets: 50000, NetWorth: 50000, AccountCount: 1},
		},
		Achievements: []models.Achievement{
			{ID: docID(24), Code: "first_run", Name: "First run", XpValue: 50, Category: "health", IsActive: true},
		},
		UserAchievements: []models.UserAchievement{
			{ID: docID(25), AchievementCode: "first_run", UnlockedAt: fixtureTime, Progress: 100},
		},
		UserXP: &models.UserXP{TotalXp: 150, Level: 2, WeeklyXp: 50, WeekStartDate: day},
	}
}

func fixtureDoc() *models.Snapshot {
	return models.NewSnapshot(fixtureData(), fixtureTime)
}

// docWith wraps data in a current-version document.
func docWith(data models.SnapshotData) *models.Snapshot {
	return models.NewSnapshot(data, fixtureTime)
}

// unkeyed lists the kinds that are never deduplicated.
var unkeyed = map[models.Kind]bool{
	models.KindStreaks:            true,
	models.KindMetricRecords:      true,
	models.KindLongevitySnapshots: true,
}
