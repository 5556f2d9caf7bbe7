package models

import "strings"

// Defaults applied to absent fields on import.
const (
	DefaultCurrency    = "ZAR"
	DefaultCountryCode = "ZA"
	emptyObject        = "{}"
	emptyArray         = "[]"
)

// Field length limits.
const (
	maxCodeLen = 100
	maxNameLen = 500
)

func jsonOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}

	return s
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func float64Or(p *float64, fallback float64) *float64 {
	if p != nil {
		return p
	}

	return &fallback
}

func (r *Dimension) Normalize() {}

func (r *MetricDefinition) Normalize() {
	r.ValueType = ParseMetricValueType(string(r.ValueType))
	r.AggregationType = ParseAggregationType(string(r.AggregationType))
	r.Tags = nonNil(r.Tags)
	r.EnumValues = nonNil(r.EnumValues)
}

func (r *ScoreDefinition) Normalize() {}

func (r *TaxProfile) Normalize() {
	r.CountryCode = stringOr(r.CountryCode, DefaultCountryCode)
	r.Brackets = jsonOr(r.Brackets, emptyArray)
	r.TaxRebates = jsonOr(r.TaxRebates, emptyObject)
}

func (r *LongevityModel) Normalize() {
	r.InputMetrics = nonNil(r.InputMetrics)
	r.ModelType = stringOr(r.ModelType, "linear")
	r.Parameters = jsonOr(r.Parameters, emptyObject)
	r.OutputUnit = stringOr(r.OutputUnit, "years_added")
}

func (r *Account) Normalize() {
	r.AccountType = ParseAccountType(string(r.AccountType))
	r.Currency = stringOr(r.Currency, DefaultCurrency)
	r.InterestCompounding = ParseCompoundingFrequency(string(r.InterestCompounding))
	r.Metadata = jsonOr(r.Metadata, emptyObject)
}

func (r *Milestone) Normalize() {
	r.Status = ParseMilestoneStatus(string(r.Status))
}

func (r *Task) Normalize() {
	r.TaskType = ParseTaskType(string(r.TaskType))
	r.Frequency = ParseFrequency(string(r.Frequency))
	r.Tags = nonNil(r.Tags)
}

func (r *Streak) Normalize() {}

func (r *MetricRecord) Normalize() {
	r.Source = stringOr(r.Source, "manual")
	r.Metadata = jsonOr(r.Metadata, emptyObject)
}

func (r *ScoreRecord) Normalize() {
	r.PeriodType = ParseScorePeriodType(string(r.PeriodType))
	r.Breakdown = jsonOr(r.Breakdown, emptyObject)
}

func (r *IncomeSource) Normalize() {
	r.Currency = stringOr(r.Currency, DefaultCurrency)
	r.PaymentFrequency = ParsePaymentFrequency(string(r.PaymentFrequency))
}

func (r *ExpenseDefinition) Normalize() {
	r.Currency = stringOr(r.Currency, DefaultCurrency)
	r.AmountType = ParseAmountType(string(r.AmountType))
	r.Frequency = ParsePaymentFrequency(string(r.Frequency))
	r.Category = stringOr(r.Category, "Other")
	r.EndConditionType = ParseEndConditionType(string(r.EndConditionType))
}

func (r *InvestmentContribution) Normalize() {
	r.Currency = stringOr(r.Currency, DefaultCurrency)
	r.Frequency = ParsePaymentFrequency(string(r.Frequency))
	r.EndConditionType = ParseEndConditionType(string(r.EndConditionType))
}

func (r *FinancialGoal) Normalize() {
	r.Currency = stringOr(r.Currency, DefaultCurrency)
}

func (r *FxRate) Normalize() {
	r.BaseCurrency = strings.ToUpper(r.BaseCurrency)
	r.QuoteCurrency = strings.ToUpper(r.QuoteCurrency)
	r.Source = stringOr(r.Source, "coingecko")
}

func (r *Transaction) Normalize() {
	r.Currency = stringOr(r.Currency, DefaultCurrency)
	r.Category = ParseTransactionCategory(string(r.Category))
	r.Tags = nonNil(r.Tags)
	r.Source = stringOr(r.Source, "manual")
}

func (r *SimulationScenario) Normalize() {
	r.BaseAssumptions = jsonOr(r.BaseAssumptions, emptyObject)
}

func (r *SimulationEvent) Normalize() {
	r.TriggerType = ParseSimTriggerType(string(r.TriggerType))
	r.EventType = stringOr(r.EventType, "expense")
	r.AmountType = ParseAmountType(string(r.AmountType))
}

// Normalize defaults the home-currency balance to the balance and the
// period flows to zero.
func (r *AccountProjection) Normalize() {
	r.BalanceHomeCurrency = float64Or(r.BalanceHomeCurrency, r.Balance)
	r.PeriodIncome = float64Or(r.PeriodIncome, 0)
	r.PeriodExpenses = float64Or(r.PeriodExpenses, 0)
	r.PeriodInterest = float64Or(r.PeriodInterest, 0)
}

func (r *NetWorthProjection) Normalize() {
	r.BreakdownByType = jsonOr(r.BreakdownByType, emptyObject)
	r.BreakdownByCurrency = jsonOr(r.BreakdownByCurrency, emptyObject)
}

func (r *LongevitySnapshot) Normalize() {
	r.Breakdown = jsonOr(r.Breakdown, emptyObject)
	r.InputMetricsSnapshot = jsonOr(r.InputMetricsSnapshot, emptyObject)
	r.ConfidenceLevel = stringOr(r.ConfidenceLevel, "moderate")
}

func (r *Achievement) Normalize() {
	r.Tier = stringOr(r.Tier, "bronze")
	r.UnlockCondition = jsonOr(r.UnlockCondition, emptyObject)
}

func (r *UserAchievement) Normalize() {}

func (r *UserXP) Normalize() {}

func (r *NetWorthSnapshot) Normalize() {
	r.HomeCurrency = stringOr(r.HomeCurrency, DefaultCurrency)
	r.BreakdownByType = jsonOr(r.BreakdownByType, emptyObject)
	r.BreakdownByCurrency = jsonOr(r.BreakdownByCurrency, emptyObject)
}

// Validation.

func checkCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrMissingCode
	}

	if len(code) > maxCodeLen {
		return ErrFieldTooLong("code", maxCodeLen)
	}

	return nil
}

func checkName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrFieldRequired(field)
	}

	if len(name) > maxNameLen {
		return ErrFieldTooLong(field, maxNameLen)
	}

	return nil
}

func checkCodeAndName(code, name string) error {
	if err := checkCode(code); err != nil {
		return err
	}

	return checkName("name", name)
}

func (r *Dimension) Validate() error        { return checkCodeAndName(r.Code, r.Name) }
func (r *MetricDefinition) Validate() error { return checkCodeAndName(r.Code, r.Name) }
func (r *ScoreDefinition) Validate() error  { return checkCodeAndName(r.Code, r.Name) }
func (r *LongevityModel) Validate() error   { return checkCodeAndName(r.Code, r.Name) }
func (r *Achievement) Validate() error      { return checkCodeAndName(r.Code, r.Name) }

func (r *TaxProfile) Validate() error             { return checkName("name", r.Name) }
func (r *Account) Validate() error                { return checkName("name", r.Name) }
func (r *IncomeSource) Validate() error           { return checkName("name", r.Name) }
func (r *ExpenseDefinition) Validate() error      { return checkName("name", r.Name) }
func (r *InvestmentContribution) Validate() error { return checkName("name", r.Name) }
func (r *FinancialGoal) Validate() error          { return checkName("name", r.Name) }
func (r *SimulationScenario) Validate() error     { return checkName("name", r.Name) }
func (r *SimulationEvent) Validate() error        { return checkName("name", r.Name) }
func (r *Task) Validate() error                   { return checkName("title", r.Title) }

func (r *Milestone) Validate() error {
	if err := checkName("title", r.Title); err != nil {
		return err
	}

	if r.DimensionID == "" {
		return ErrFieldRequired("dimensionId")
	}

	return nil
}

// Validate enforces that a streak follows exactly one of a task or a metric.
func (r *Streak) Validate() error {
	hasTask := r.TaskID != nil && *r.TaskID != ""
	hasMetric := r.MetricCode != nil && *r.MetricCode != ""

	if hasTask == hasMetric {
		return ErrStreakTarget
	}

	return nil
}

func (r *MetricRecord) Validate() error {
	if r.MetricCode == "" {
		return ErrFieldRequired("metricCode")
	}

	return nil
}

func (r *ScoreRecord) Validate() error {
	if r.ScoreCode == "" {
		return ErrFieldRequired("scoreCode")
	}

	return nil
}

func (r *FxRate) Validate() error {
	if r.BaseCurrency == "" || r.QuoteCurrency == "" {
		return ErrFieldRequired("baseCurrency and quoteCurrency")
	}

	return nil
}

func (r *UserAchievement) Validate() error {
	if r.AchievementCode == "" {
		return ErrFieldRequired("achievementCode")
	}

	return nil
}

func (r *Transaction) Validate() error        { return nil }
func (r *AccountProjection) Validate() error  { return nil }
func (r *NetWorthProjection) Validate() error { return nil }
func (r *LongevitySnapshot) Validate() error  { return nil }
func (r *UserXP) Validate() error             { return nil }
func (r *NetWorthSnapshot) Validate() error   { return nil }
