package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lifeos-app/lifeos/internal/models"
)

// column is one db-tagged field of a record struct.
type column struct {
	name     string
	index    []int
	readonly bool
	// expr replaces "t.<name>" in SELECT lists when set.
	expr string
}

// table describes how one entity kind is stored.
type table struct {
	kind       models.Kind
	name       string
	userScoped bool
	// activeOnly limits exports of shared catalog tables to active rows.
	activeOnly bool
	orderBy    string
	columns    []column

	selectSQL string
	insertSQL string
	updateSQL string
}

// selectExprs overrides computed columns.
var selectExprs = map[string]string{
	"achievement_code": "(SELECT a.code FROM achievements a WHERE a.id = t.achievement_id)",
}

func newTable[T any](kind models.Kind, name string, userScoped, activeOnly bool, orderBy string) *table {
	t := &table{
		kind:       kind,
		name:       name,
		userScoped: userScoped,
		activeOnly: activeOnly,
		orderBy:    orderBy,
		columns:    columnsOf(reflect.TypeFor[T]()),
	}

	t.buildSQL()

	return t
}

// columnsOf lists the db-tagged fields of typ in declaration order.
func columnsOf(typ reflect.Type) []column {
	cols := make([]column, 0, typ.NumField())

	for i := range typ.NumField() {
		f := typ.Field(i)

		name := f.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		cols = append(cols, column{
			name:     name,
			index:    f.Index,
			readonly: f.Tag.Get("store") == "readonly",
			expr:     selectExprs[name],
		})
	}

	return cols
}

func (t *table) buildSQL() {
	ident := pgx.Identifier{t.name}.Sanitize()

	sel := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c.expr != "" {
			sel = append(sel, c.expr+" AS "+pgx.Identifier{c.name}.Sanitize())
			continue
		}

		sel = append(sel, "t."+pgx.Identifier{c.name}.Sanitize())
	}

	var where []string
	if t.userScoped {
		where = append(where, "t.user_id = $1")
	}

	if t.activeOnly {
		where = append(where, "t.is_active")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s t", strings.Join(sel, ", "), ident)

	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	if t.orderBy != "" {
		b.WriteString(" ORDER BY " + t.orderBy)
	}

	t.selectSQL = b.String()

	insertCols := []string{"id"}
	if t.userScoped {
		insertCols = append(insertCols, "user_id")
	}

	var sets []string

	for _, c := range t.writable() {
		insertCols = append(insertCols, pgx.Identifier{c.name}.Sanitize())
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{c.name}.Sanitize(), len(sets)+2))
	}

	params := make([]string, len(insertCols))
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	t.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident, strings.Join(insertCols, ", "), strings.Join(params, ", "))

	// $1 is the row ID, $2..$n+1 the writable columns, $n+2 the owner.
	t.updateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", ident, strings.Join(sets, ", "))
	if t.userScoped {
		t.updateSQL += fmt.Sprintf(" AND user_id = $%d", len(sets)+2)
	}
}

// writable returns the columns written on insert and update, excluding the ID.
func (t *table) writable() []column {
	cols := make([]column, 0, len(t.columns))

	for _, c := range t.columns {
		if c.name == "id" || c.readonly {
			continue
		}

		cols = append(cols, c)
	}

	return cols
}

// values extracts the writable column values of rec in writable() order.
func (t *table) values(rec models.Record) ([]any, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, fmt.Errorf("%s: expected non-nil record pointer, got %T", t.kind, rec)
	}

	v = v.Elem()

	cols := t.writable()
	out := make([]any, 0, len(cols))

	for _, c := range cols {
		val := v.FieldByIndex(c.index).Interface()

		// text[] columns are NOT NULL.
		if s, ok := val.([]string); ok && s == nil {
			val = []string{}
		}

		out = append(out, val)
	}

	return out, nil
}

var tables = buildRegistry()

func buildRegistry() map[models.Kind]*table {
	list := []*table{
		newTable[models.Dimension](models.KindDimensions, "dimensions", false, true, "t.sort_order, t.code"),
		newTable[models.MetricDefinition](models.KindMetricDefinitions, "metric_definitions", false, true, "t.code"),
		newTable[models.ScoreDefinition](models.KindScoreDefinitions, "score_definitions", false, true, "t.code"),
		newTable[models.TaxProfile](models.KindTaxProfiles, "tax_profiles", true, false, "t.tax_year, t.name"),
		newTable[models.LongevityModel](models.KindLongevityModels, "longevity_models", false, true, "t.code"),
		newTable[models.Account](models.KindAccounts, "accounts", true, false, "t.name, t.id"),
		newTable[models.Milestone](models.KindMilestones, "milestones", true, false, "t.created_at, t.id"),
		newTable[models.Task](models.KindTasks, "tasks", true, false, "t.created_at, t.id"),
		newTable[models.Streak](models.KindStreaks, "streaks", true, false, "t.id"),
		newTable[models.MetricRecord](models.KindMetricRecords, "metric_records", true, false, "t.recorded_at, t.id"),
		newTable[models.ScoreRecord](models.KindScoreRecords, "score_records", true, false, "t.period_start, t.score_code"),
		newTable[models.IncomeSource](models.KindIncomeSources, "income_sources", true, false, "t.name, t.id"),
		newTable[models.ExpenseDefinition](models.KindExpenseDefinitions, "expense_definitions", true, false, "t.name, t.id"),
		newTable[models.InvestmentContribution](models.KindInvestmentContributions, "investment_contributions", true, false, "t.name, t.id"),
		newTable[models.FinancialGoal](models.KindFinancialGoals, "financial_goals", true, false, "t.priority, t.name"),
		newTable[models.FxRate](models.KindFxRates, "fx_rates", false, false, "t.base_currency, t.quote_currency"),
		newTable[models.Transaction](models.KindTransactions, "transactions", true, false, "t.transaction_date, t.recorded_at, t.id"),
		newTable[models.SimulationScenario](models.KindSimulationScenarios, "simulation_scenarios", true, false, "t.name, t.id"),
		newTable[models.SimulationEvent](models.KindSimulationEvents, "simulation_events", true, false, "t.scenario_id, t.sort_order, t.id"),
		newTable[models.AccountProjection](models.KindAccountProjections, "account_projections", true, false, "t.scenario_id, t.period_date, t.id"),
		newTable[models.NetWorthProjection](models.KindNetWorthProjections, "net_worth_projections", true, false, "t.scenario_id, t.period_date"),
		newTable[models.LongevitySnapshot](models.KindLongevitySnapshots, "longevity_snapshots", true, false, "t.calculated_at, t.id"),
		newTable[models.Achievement](models.KindAchievements, "achievements", false, true, "t.sort_order, t.code"),
		newTable[models.UserAchievement](models.KindUserAchievements, "user_achievements", true, false, "t.unlocked_at, t.id"),
		newTable[models.UserXP](models.KindUserXP, "user_xp", true, false, ""),
		newTable[models.NetWorthSnapshot](models.KindNetWorthSnapshots, "net_worth_snapshots", true, false, "t.snapshot_date"),
	}

	reg := make(map[models.Kind]*table, len(list))
	for _, t := range list {
		reg[t.kind] = t
	}

	return reg
}

func tableFor(kind models.Kind) (*table, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	return t, nil
}

// deleteOrder lists user-scoped tables children first.
var deleteOrder = []models.Kind{
	models.KindUserXP,
	models.KindUserAchievements,
	models.KindNetWorthSnapshots,
	models.KindLongevitySnapshots,
	models.KindNetWorthProjections,
	models.KindAccountProjections,
	models.KindSimulationEvents,
	models.KindSimulationScenarios,
	models.KindTransactions,
	models.KindFinancialGoals,
	models.KindInvestmentContributions,
	models.KindExpenseDefinitions,
	models.KindIncomeSources,
	models.KindScoreRecords,
	models.KindMetricRecords,
	models.KindStreaks,
	models.KindTasks,
	models.KindMilestones,
	models.KindAccounts,
	models.KindTaxProfiles,
}
