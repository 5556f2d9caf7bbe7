package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NaturalKey identifies a row by business columns instead of by ID, so the
// same logical row can be found in a store that assigned it a different ID.
type NaturalKey struct {
	Columns []string
	Values  []any
}

// keyOf builds a key from a comma-separated column list and matching values.
func keyOf(columns string, values ...any) NaturalKey {
	return NaturalKey{Columns: strings.Split(columns, ","), Values: values}
}

// String renders the key in a stable form suitable for map lookups.
func (k NaturalKey) String() string {
	var b strings.Builder

	for i, c := range k.Columns {
		if i > 0 {
			b.WriteByte('|')
		}

		b.WriteString(c)
		b.WriteByte('=')

		if i < len(k.Values) {
			b.WriteString(FormatKeyValue(k.Values[i]))
		}
	}

	return b.String()
}

// FormatKeyValue renders one key value so that equal column values render equally.
func FormatKeyValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case Date:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Record is implemented by every entity record carried in a snapshot.
type Record interface {
	Kind() Kind
	RecordID() string
	SetRecordID(id string)
	// NaturalKey returns the business key for the record as owned by userID.
	// ok is false for kinds that are never deduplicated.
	NaturalKey(userID string) (key NaturalKey, ok bool)
	// Normalize parses enums leniently and fills absent JSON sub-documents.
	Normalize()
	Validate() error
}

func (r *Dimension) Kind() Kind { return KindDimensions }
func (r *MetricDefinition) Kind() Kind { return KindMetricDefinitions }
func (r *ScoreDefinition) Kind() Kind { return KindScoreDefinitions }
func (r *TaxProfile) Kind() Kind { return KindTaxProfiles }
func (r *LongevityModel) Kind() Kind { return KindLongevityModels }
func (r *Account) Kind() Kind { return KindAccounts }
func (r *Milestone) Kind() Kind { return KindMilestones }
func (r *Task) Kind() Kind { return KindTasks }
func (r *Streak) Kind() Kind { return KindStreaks }
func (r *MetricRecord) Kind() Kind { return KindMetricRecords }
func (r *ScoreRecord) Kind() Kind { return KindScoreRecords }
func (r *IncomeSource) Kind() Kind { return KindIncomeSources }
func (r *ExpenseDefinition) Kind() Kind { return KindExpenseDefinitions }
func (r *InvestmentContribution) Kind() Kind { return KindInvestmentContributions }
func (r *FinancialGoal) Kind() Kind { return KindFinancialGoals }
func (r *FxRate) Kind() Kind { return KindFxRates }
func (r *Transaction) Kind() Kind { return KindTransactions }
func (r *SimulationScenario) Kind() Kind { return KindSimulationScenarios }
func (r *SimulationEvent) Kind() Kind { return KindSimulationEvents }
func (r *AccountProjection) Kind() Kind { return KindAccountProjections }
func (r *NetWorthProjection) Kind() Kind { return KindNetWorthProjections }
func (r *LongevitySnapshot) Kind() Kind { return KindLongevitySnapshots }
func (r *Achievement) Kind() Kind { return KindAchievements }
func (r *UserAchievement) Kind() Kind { return KindUserAchievements }
func (r *UserXP) Kind() Kind { return KindUserXP }
func (r *NetWorthSnapshot) Kind() Kind { return KindNetWorthSnapshots }

func (r *Dimension) RecordID() string { return r.ID }
func (r *MetricDefinition) RecordID() string { return r.ID }
func (r *ScoreDefinition) RecordID() string { return r.ID }
func (r *TaxProfile) RecordID() string { return r.ID }
func (r *LongevityModel) RecordID() string { return r.ID }
func (r *Account) RecordID() string { return r.ID }
func (r *Milestone) RecordID() string { return r.ID }
func (r *Task) RecordID() string { return r.ID }
func (r *Streak) RecordID() string { return r.ID }
func (r *MetricRecord) RecordID() string { return r.ID }
func (r *ScoreRecord) RecordID() string { return r.ID }
func (r *IncomeSource) RecordID() string { return r.ID }
func (r *ExpenseDefinition) RecordID() string { return r.ID }
func (r *InvestmentContribution) RecordID() string { return r.ID }
func (r *FinancialGoal) RecordID() string { return r.ID }
func (r *FxRate) RecordID() string { return r.ID }
func (r *Transaction) RecordID() string { return r.ID }
func (r *SimulationScenario) RecordID() string { return r.ID }
func (r *SimulationEvent) RecordID() string { return r.ID }
func (r *AccountProjection) RecordID() string { return r.ID }
func (r *NetWorthProjection) RecordID() string { return r.ID }
func (r *LongevitySnapshot) RecordID() string { return r.ID }
func (r *Achievement) RecordID() string { return r.ID }
func (r *UserAchievement) RecordID() string { return r.ID }
func (r *UserXP) RecordID() string { return r.ID }
func (r *NetWorthSnapshot) RecordID() string { return r.ID }

func (r *Dimension) SetRecordID(id string) { r.ID = id }
func (r *MetricDefinition) SetRecordID(id string) { r.ID = id }
func (r *ScoreDefinition) SetRecordID(id string) { r.ID = id }
func (r *TaxProfile) SetRecordID(id string) { r.ID = id }
func (r *LongevityModel) SetRecordID(id string) { r.ID = id }
func (r *Account) SetRecordID(id string) { r.ID = id }
func (r *Milestone) SetRecordID(id string) { r.ID = id }
func (r *Task) SetRecordID(id string) { r.ID = id }
func (r *Streak) SetRecordID(id string) { r.ID = id }
func (r *MetricRecord) SetRecordID(id string) { r.ID = id }
func (r *ScoreRecord) SetRecordID(id string) { r.ID = id }
func (r *IncomeSource) SetRecordID(id string) { r.ID = id }
func (r *ExpenseDefinition) SetRecordID(id string) { r.ID = id }
func (r *InvestmentContribution) SetRecordID(id string) { r.ID = id }
func (r *FinancialGoal) SetRecordID(id string) { r.ID = id }
func (r *FxRate) SetRecordID(id string) { r.ID = id }
func (r *Transaction) SetRecordID(id string) { r.ID = id }
func (r *SimulationScenario) SetRecordID(id string) { r.ID = id }
func (r *SimulationEvent) SetRecordID(id string) { r.ID = id }
func (r *AccountProjection) SetRecordID(id string) { r.ID = id }
func (r *NetWorthProjection) SetRecordID(id string) { r.ID = id }
func (r *LongevitySnapshot) SetRecordID(id string) { r.ID = id }
func (r *Achievement) SetRecordID(id string) { r.ID = id }
func (r *UserAchievement) SetRecordID(id string) { r.ID = id }
func (r *UserXP) SetRecordID(id string) { r.ID = id }
func (r *NetWorthSnapshot) SetRecordID(id string) { r.ID = id }

// Global kinds are keyed by code alone.

func (r *Dimension) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("code", r.Code), true
}

func (r *MetricDefinition) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("code", r.Code), true
}

func (r *ScoreDefinition) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("code", r.Code), true
}

func (r *LongevityModel) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("code", r.Code), true
}

func (r *Achievement) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("code", r.Code), true
}

func (r *FxRate) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("base_currency,quote_currency", r.BaseCurrency, r.QuoteCurrency), true
}

// Named per-user kinds.

func (r *TaxProfile) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *Account) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *Milestone) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,title", userID, r.Title), true
}

func (r *Task) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,title", userID, r.Title), true
}

func (r *IncomeSource) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *ExpenseDefinition) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *InvestmentContribution) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *FinancialGoal) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

func (r *SimulationScenario) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,name", userID, r.Name), true
}

// Time-series and child kinds.

func (r *ScoreRecord) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,score_code,period_start", userID, r.ScoreCode, r.PeriodStart), true
}

func (r *NetWorthSnapshot) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,snapshot_date", userID, r.SnapshotDate), true
}

// NaturalKey requires AchievementID to have been resolved from the code.
func (r *UserAchievement) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id,achievement_id", userID, r.AchievementID), true
}

func (r *UserXP) NaturalKey(userID string) (NaturalKey, bool) {
	return keyOf("user_id", userID), true
}

// Transactions and simulation events have no business key: two identical
// coffees on one day are two rows. They are keyed by their document ID so a
// repeated merge of the same export finds the rows it wrote before.

func (r *Transaction) NaturalKey(userID string) (NaturalKey, bool) {
	return idKey("user_id", userID, r.ID)
}

func (r *SimulationEvent) NaturalKey(string) (NaturalKey, bool) {
	return idKey("scenario_id", r.ScenarioID, r.ID)
}

// idKey scopes a document ID by its owner. Rows without a valid UUID are
// never deduplicated.
func idKey(ownerColumn, owner, id string) (NaturalKey, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return NaturalKey{}, false
	}

	return keyOf(ownerColumn+",id", owner, id), true
}

func (r *AccountProjection) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("scenario_id,account_id,period_date", r.ScenarioID, r.AccountID, r.PeriodDate), true
}

func (r *NetWorthProjection) NaturalKey(string) (NaturalKey, bool) {
	return keyOf("scenario_id,period_date", r.ScenarioID, r.PeriodDate), true
}

// Never deduplicated.

func (r *Streak) NaturalKey(string) (NaturalKey, bool) { return NaturalKey{}, false }
func (r *MetricRecord) NaturalKey(string) (NaturalKey, bool) { return NaturalKey{}, false }
func (r *LongevitySnapshot) NaturalKey(string) (NaturalKey, bool) { return NaturalKey{}, false }
