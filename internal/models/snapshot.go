// Package models defines the portable snapshot document and the records it carries.
package models

import (
	"fmt"
	"time"
)

// Snapshot document identity.
const (
	SchemaVersion = "1.0.0"
	Generator     = "LifeOS"
)

// Kind names one entity collection. Its value is the collection's JSON key
// inside Snapshot.Data and the key used in ImportResult.Results.
type Kind string

// Entity collections.
const (
	KindDimensions              Kind = "dimensions"
	KindMetricDefinitions       Kind = "metricDefinitions"
	KindScoreDefinitions        Kind = "scoreDefinitions"
	KindTaxProfiles             Kind = "taxProfiles"
	KindLongevityModels         Kind = "longevityModels"
	KindAccounts                Kind = "accounts"
	KindMilestones              Kind = "milestones"
	KindTasks                   Kind = "tasks"
	KindStreaks                 Kind = "streaks"
	KindMetricRecords           Kind = "metricRecords"
	KindScoreRecords            Kind = "scoreRecords"
	KindIncomeSources           Kind = "incomeSources"
	KindExpenseDefinitions      Kind = "expenseDefinitions"
	KindInvestmentContributions Kind = "investmentContributions"
	KindFinancialGoals          Kind = "financialGoals"
	KindFxRates                 Kind = "fxRates"
	KindTransactions            Kind = "transactions"
	KindSimulationScenarios     Kind = "simulationScenarios"
	KindSimulationEvents        Kind = "simulationEvents"
	KindAccountProjections      Kind = "accountProjections"
	KindNetWorthProjections     Kind = "netWorthProjections"
	KindLongevitySnapshots      Kind = "longevitySnapshots"
	KindAchievements            Kind = "achievements"
	KindUserAchievements        Kind = "userAchievements"
	KindUserXP                  Kind = "userXP"
	KindNetWorthSnapshots       Kind = "netWorthSnapshots"
)

// Kinds lists every collection in import order. Each kind only references
// kinds that appear before it.
var Kinds = []Kind{
	KindDimensions,
	KindMetricDefinitions,
	KindScoreDefinitions,
	KindTaxProfiles,
	KindLongevityModels,
	KindAccounts,
	KindMilestones,
	KindTasks,
	KindStreaks,
	KindMetricRecords,
	KindScoreRecords,
	KindIncomeSources,
	KindExpenseDefinitions,
	KindInvestmentContributions,
	KindFinancialGoals,
	KindFxRates,
	KindTransactions,
	KindSimulationScenarios,
	KindSimulationEvents,
	KindAccountProjections,
	KindNetWorthProjections,
	KindLongevitySnapshots,
	KindNetWorthSnapshots,
	KindAchievements,
	KindUserAchievements,
	KindUserXP,
}

// IsGlobal reports whether rows of the kind are shared by all users.
func (k Kind) IsGlobal() bool {
	switch k {
	case KindDimensions, KindMetricDefinitions, KindScoreDefinitions,
		KindLongevityModels, KindFxRates, KindAchievements:
		return true
	default:
		return false
	}
}

// Snapshot is one user's full data graph in portable form.
type Snapshot struct {
	Schema SchemaInfo   `json:"schema"`
	Data   SnapshotData `json:"data"`
	Meta   Meta         `json:"meta"`
}

// SchemaInfo identifies the document format.
type SchemaInfo struct {
	Version    string    `json:"version"`
	Generator  string    `json:"generator"`
	ExportedAt time.Time `json:"exportedAt"`
}

// Meta is a summary derived from Data. It is never authoritative.
type Meta struct {
	TotalEntities int          `json:"totalEntities"`
	EntityCounts  map[Kind]int `json:"entityCounts"`
}

// SnapshotData holds one collection per entity kind.
type SnapshotData struct {
	Profile                 *Profile                 `json:"profile,omitempty"`
	Dimensions              []Dimension              `json:"dimensions"`
	MetricDefinitions       []MetricDefinition       `json:"metricDefinitions"`
	ScoreDefinitions        []ScoreDefinition        `json:"scoreDefinitions"`
	TaxProfiles             []TaxProfile             `json:"taxProfiles"`
	LongevityModels         []LongevityModel         `json:"longevityModels"`
	Accounts                []Account                `json:"accounts"`
	Milestones              []Milestone              `json:"milestones"`
	Tasks                   []Task                   `json:"tasks"`
	Streaks                 []Streak                 `json:"streaks"`
	MetricRecords           []MetricRecord           `json:"metricRecords"`
	ScoreRecords            []ScoreRecord            `json:"scoreRecords"`
	IncomeSources           []IncomeSource           `json:"incomeSources"`
	ExpenseDefinitions      []ExpenseDefinition      `json:"expenseDefinitions"`
	InvestmentContributions []InvestmentContribution `json:"investmentContributions"`
	FinancialGoals          []FinancialGoal          `json:"financialGoals"`
	FxRates                 []FxRate                 `json:"fxRates"`
	Transactions            []Transaction            `json:"transactions"`
	SimulationScenarios     []SimulationScenario     `json:"simulationScenarios"`
	SimulationEvents        []SimulationEvent        `json:"simulationEvents"`
	AccountProjections      []AccountProjection      `json:"accountProjections"`
	NetWorthProjections     []NetWorthProjection     `json:"netWorthProjections"`
	LongevitySnapshots      []LongevitySnapshot      `json:"longevitySnapshots"`
	Achievements            []Achievement            `json:"achievements"`
	UserAchievements        []UserAchievement        `json:"userAchievements"`
	UserXP                  *UserXP                  `json:"userXP"`
	NetWorthSnapshots       []NetWorthSnapshot       `json:"netWorthSnapshots"`
}

// Counts returns the number of records per kind. UserXP counts as one when present.
func (d *SnapshotData) Counts() map[Kind]int {
	xp := 0
	if d.UserXP != nil {
		xp = 1
	}

	return map[Kind]int{
		KindDimensions:              len(d.Dimensions),
		KindMetricDefinitions:       len(d.MetricDefinitions),
		KindScoreDefinitions:        len(d.ScoreDefinitions),
		KindTaxProfiles:             len(d.TaxProfiles),
		KindLongevityModels:         len(d.LongevityModels),
		KindAccounts:                len(d.Accounts),
		KindMilestones:              len(d.Milestones),
		KindTasks:                   len(d.Tasks),
		KindStreaks:                 len(d.Streaks),
		KindMetricRecords:           len(d.MetricRecords),
		KindScoreRecords:            len(d.ScoreRecords),
		KindIncomeSources:           len(d.IncomeSources),
		KindExpenseDefinitions:      len(d.ExpenseDefinitions),
		KindInvestmentContributions: len(d.InvestmentContributions),
		KindFinancialGoals:          len(d.FinancialGoals),
		KindFxRates:                 len(d.FxRates),
		KindTransactions:            len(d.Transactions),
		KindSimulationScenarios:     len(d.SimulationScenarios),
		KindSimulationEvents:        len(d.SimulationEvents),
		KindAccountProjections:      len(d.AccountProjections),
		KindNetWorthProjections:     len(d.NetWorthProjections),
		KindLongevitySnapshots:      len(d.LongevitySnapshots),
		KindAchievements:            len(d.Achievements),
		KindUserAchievements:        len(d.UserAchievements),
		KindUserXP:                  xp,
		KindNetWorthSnapshots:       len(d.NetWorthSnapshots),
	}
}

// Append adds rec to the collection matching its kind.
func (d *SnapshotData) Append(rec Record) error {
	switch r := rec.(type) {
	case *Dimension:
		d.Dimensions = append(d.Dimensions, *r)
	case *MetricDefinition:
		d.MetricDefinitions = append(d.MetricDefinitions, *r)
	case *ScoreDefinition:
		d.ScoreDefinitions = append(d.ScoreDefinitions, *r)
	case *TaxProfile:
		d.TaxProfiles = append(d.TaxProfiles, *r)
	case *LongevityModel:
		d.LongevityModels = append(d.LongevityModels, *r)
	case *Account:
		d.Accounts = append(d.Accounts, *r)
	case *Milestone:
		d.Milestones = append(d.Milestones, *r)
	case *Task:
		d.Tasks = append(d.Tasks, *r)
	case *Streak:
		d.Streaks = append(d.Streaks, *r)
	case *MetricRecord:
		d.MetricRecords = append(d.MetricRecords, *r)
	case *ScoreRecord:
		d.ScoreRecords = append(d.ScoreRecords, *r)
	case *IncomeSource:
		d.IncomeSources = append(d.IncomeSources, *r)
	case *ExpenseDefinition:
		d.ExpenseDefinitions = append(d.ExpenseDefinitions, *r)
	case *InvestmentContribution:
		d.InvestmentContributions = append(d.InvestmentContributions, *r)
	case *FinancialGoal:
		d.FinancialGoals = append(d.FinancialGoals, *r)
	case *FxRate:
		d.FxRates = append(d.FxRates, *r)
	case *Transaction:
		d.Transactions = append(d.Transactions, *r)
	case *SimulationScenario:
		d.SimulationScenarios = append(d.SimulationScenarios, *r)
	case *SimulationEvent:
		d.SimulationEvents = append(d.SimulationEvents, *r)
	case *AccountProjection:
		d.AccountProjections = append(d.AccountProjections, *r)
	case *NetWorthProjection:
		d.NetWorthProjections = append(d.NetWorthProjections, *r)
	case *LongevitySnapshot:
		d.LongevitySnapshots = append(d.LongevitySnapshots, *r)
	case *Achievement:
		d.Achievements = append(d.Achievements, *r)
	case *UserAchievement:
		d.UserAchievements = append(d.UserAchievements, *r)
	case *UserXP:
		xp := *r
		d.UserXP = &xp
	case *NetWorthSnapshot:
		d.NetWorthSnapshots = append(d.NetWorthSnapshots, *r)
	default:
		return fmt.Errorf("unsupported record type %T", rec)
	}

	return nil
}

// ComputeMeta derives the summary block from data.
func ComputeMeta(d *SnapshotData) Meta {
	counts := d.Counts()

	total := 0
	for _, n := range counts {
		total += n
	}

	return Meta{TotalEntities: total, EntityCounts: counts}
}

// NewSnapshot wraps data in a current-version document with a fresh summary.
func NewSnapshot(data SnapshotData, exportedAt time.Time) *Snapshot {
	return &Snapshot{
		Schema: SchemaInfo{
			Version:    SchemaVersion,
			Generator:  Generator,
			ExportedAt: exportedAt.UTC(),
		},
		Data: data,
		Meta: ComputeMeta(&data),
	}
}

// VerifyMeta returns one message per disagreement between Meta and Data.
// Absent entity counts are reported only when the collection is non-empty.
func (s *Snapshot) VerifyMeta() []string {
	var problems []string

	counts := s.Data.Counts()
	total := 0

	for _, k := range Kinds {
		n := counts[k]
		total += n

		got, ok := s.Meta.EntityCounts[k]
		if !ok && n == 0 {
			continue
		}

		if got != n {
			problems = append(problems, fmt.Sprintf("meta.entityCounts[%s] = %d, data has %d", k, got, n))
		}
	}

	if s.Meta.TotalEntities != total {
		problems = append(problems, fmt.Sprintf("meta.totalEntities = %d, data has %d", s.Meta.TotalEntities, total))
	}

	return problems
}
