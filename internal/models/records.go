package models

import "time"

// Records are flat, point-in-time copies of one table row. IDs are only
// meaningful inside the document that carries them. The db tags name the
// backing column; fields tagged store:"readonly" are read on export but
// never written.

// Profile carries the user's scalar settings. It is not an entity.
type Profile struct {
	Email                  string   `json:"email"`
	Username               string   `json:"username"`
	HomeCurrency           string   `json:"homeCurrency"`
	DateOfBirth            *Date    `json:"dateOfBirth"`
	LifeExpectancyBaseline float64  `json:"lifeExpectancyBaseline"`
	InflationRateAnnual    *float64 `json:"inflationRateAnnual"`
	DefaultGrowthRate      *float64 `json:"defaultGrowthRate"`
	RetirementAge          *int     `json:"retirementAge"`
}

// Dimension is a life area such as health or finances.
type Dimension struct {
	ID            string  `json:"id" db:"id"`
	Code          string  `json:"code" db:"code"`
	Name          string  `json:"name" db:"name"`
	Description   *string `json:"description" db:"description"`
	Icon          *string `json:"icon" db:"icon"`
	DefaultWeight float64 `json:"defaultWeight" db:"default_weight"`
	SortOrder     int     `json:"sortOrder" db:"sort_order"`
	IsActive      bool    `json:"isActive" db:"is_active"`
}

// MetricDefinition describes something that can be measured.
type MetricDefinition struct {
	ID              string          `json:"id" db:"id"`
	DimensionID     *string         `json:"dimensionId" db:"dimension_id"`
	Code            string          `json:"code" db:"code"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description" db:"description"`
	Unit            *string         `json:"unit" db:"unit"`
	ValueType       MetricValueType `json:"valueType" db:"value_type"`
	AggregationType AggregationType `json:"aggregationType" db:"aggregation_type"`
	MinValue        *float64        `json:"minValue" db:"min_value"`
	MaxValue        *float64        `json:"maxValue" db:"max_value"`
	TargetValue     *float64        `json:"targetValue" db:"target_value"`
	Icon            *string         `json:"icon" db:"icon"`
	Tags            []string        `json:"tags" db:"tags"`
	EnumValues      []string        `json:"enumValues" db:"enum_values"`
	IsDerived       bool            `json:"isDerived" db:"is_derived"`
	DerivedFormula  *string         `json:"derivedFormula" db:"derived_formula"`
	IsActive        bool            `json:"isActive" db:"is_active"`
}

// ScoreDefinition describes a computed score.
type ScoreDefinition struct {
	ID          string  `json:"id" db:"id"`
	DimensionID *string `json:"dimensionId" db:"dimension_id"`
	Code        string  `json:"code" db:"code"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Formula     string  `json:"formula" db:"formula"`
	MinScore    float64 `json:"minScore" db:"min_score"`
	MaxScore    float64 `json:"maxScore" db:"max_score"`
	IsActive    bool    `json:"isActive" db:"is_active"`
}

// TaxProfile holds one tax year's rules.
type TaxProfile struct {
	ID              string   `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	TaxYear         int      `json:"taxYear" db:"tax_year"`
	CountryCode     string   `json:"countryCode" db:"country_code"`
	Brackets        string   `json:"brackets" db:"brackets"`
	UifRate         *float64 `json:"uifRate" db:"uif_rate"`
	UifCap          *float64 `json:"uifCap" db:"uif_cap"`
	VatRate         *float64 `json:"vatRate" db:"vat_rate"`
	IsVatRegistered bool     `json:"isVatRegistered" db:"is_vat_registered"`
	TaxRebates      string   `json:"taxRebates" db:"tax_rebates"`
	IsActive        bool     `json:"isActive" db:"is_active"`
}

// LongevityModel estimates years of life added by a set of metrics.
type LongevityModel struct {
	ID           string   `json:"id" db:"id"`
	Code         string   `json:"code" db:"code"`
	Name         string   `json:"name" db:"name"`
	Description  *string  `json:"description" db:"description"`
	InputMetrics []string `json:"inputMetrics" db:"input_metrics"`
	ModelType    string   `json:"modelType" db:"model_type"`
	Parameters   string   `json:"parameters" db:"parameters"`
	OutputUnit   string   `json:"outputUnit" db:"output_unit"`
	IsActive     bool     `json:"isActive" db:"is_active"`
}

// Account is a financial account or liability.
type Account struct {
	ID                  string               `json:"id" db:"id"`
	Name                string               `json:"name" db:"name"`
	AccountType         AccountType          `json:"accountType" db:"account_type"`
	Currency            string               `json:"currency" db:"currency"`
	InitialBalance      float64              `json:"initialBalance" db:"initial_balance"`
	CurrentBalance      float64              `json:"currentBalance" db:"current_balance"`
	BalanceUpdatedAt    time.Time            `json:"balanceUpdatedAt" db:"balance_updated_at"`
	Institution         *string              `json:"institution" db:"institution"`
	IsLiability         bool                 `json:"isLiability" db:"is_liability"`
	InterestRateAnnual  *float64             `json:"interestRateAnnual" db:"interest_rate_annual"`
	InterestCompounding CompoundingFrequency `json:"interestCompounding" db:"interest_compounding"`
	MonthlyFee          float64              `json:"monthlyFee" db:"monthly_fee"`
	Metadata            string               `json:"metadata" db:"metadata"`
	IsActive            bool                 `json:"isActive" db:"is_active"`
}

// Milestone is a dated goal inside a dimension.
type Milestone struct {
	ID                string          `json:"id" db:"id"`
	DimensionID       string          `json:"dimensionId" db:"dimension_id"`
	Title             string          `json:"title" db:"title"`
	Description       *string         `json:"description" db:"description"`
	TargetDate        *Date           `json:"targetDate" db:"target_date"`
	TargetMetricCode  *string         `json:"targetMetricCode" db:"target_metric_code"`
	TargetMetricValue *float64        `json:"targetMetricValue" db:"target_metric_value"`
	Status            MilestoneStatus `json:"status" db:"status"`
	CompletedAt       *time.Time      `json:"completedAt" db:"completed_at"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// Task is a habit or to-do item.
type Task struct {
	ID               string     `json:"id" db:"id"`
	DimensionID      *string    `json:"dimensionId" db:"dimension_id"`
	MilestoneID      *string    `json:"milestoneId" db:"milestone_id"`
	Title            string     `json:"title" db:"title"`
	Description      *string    `json:"description" db:"description"`
	TaskType         TaskType   `json:"taskType" db:"task_type"`
	Frequency        Frequency  `json:"frequency" db:"frequency"`
	LinkedMetricCode *string    `json:"linkedMetricCode" db:"linked_metric_code"`
	ScheduledDate    *Date      `json:"scheduledDate" db:"scheduled_date"`
	ScheduledTime    *string    `json:"scheduledTime" db:"scheduled_time"`
	StartDate        *Date      `json:"startDate" db:"start_date"`
	EndDate          *Date      `json:"endDate" db:"end_date"`
	IsCompleted      bool       `json:"isCompleted" db:"is_completed"`
	CompletedAt      *time.Time `json:"completedAt" db:"completed_at"`
	IsActive         bool       `json:"isActive" db:"is_active"`
	Tags             []string   `json:"tags" db:"tags"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}

// Streak tracks consecutive successes of one task or one metric.
type Streak struct {
	ID                  string  `json:"id" db:"id"`
	TaskID              *string `json:"taskId" db:"task_id"`
	MetricCode          *string `json:"metricCode" db:"metric_code"`
	CurrentStreakLength int     `json:"currentStreakLength" db:"current_streak_length"`
	LongestStreakLength int     `json:"longestStreakLength" db:"longest_streak_length"`
	LastSuccessDate     *Date   `json:"lastSuccessDate" db:"last_success_date"`
	StreakStartDate     *Date   `json:"streakStartDate" db:"streak_start_date"`
	MissCount           int     `json:"missCount" db:"miss_count"`
	MaxAllowedMisses    int     `json:"maxAllowedMisses" db:"max_allowed_misses"`
	IsActive            bool    `json:"isActive" db:"is_active"`
}

// MetricRecord is one observation of a metric.
type MetricRecord struct {
	ID           string    `json:"id" db:"id"`
	MetricCode   string    `json:"metricCode" db:"metric_code"`
	ValueNumber  *float64  `json:"valueNumber" db:"value_number"`
	ValueBoolean *bool     `json:"valueBoolean" db:"value_boolean"`
	ValueString  *string   `json:"valueString" db:"value_string"`
	RecordedAt   time.Time `json:"recordedAt" db:"recorded_at"`
	Source       string    `json:"source" db:"source"`
	Notes        *string   `json:"notes" db:"notes"`
	Metadata     string    `json:"metadata" db:"metadata"`
}

// ScoreRecord is one computed score for a period.
type ScoreRecord struct {
	ID           string          `json:"id" db:"id"`
	ScoreCode    string          `json:"scoreCode" db:"score_code"`
	ScoreValue   float64         `json:"scoreValue" db:"score_value"`
	PeriodType   ScorePeriodType `json:"periodType" db:"period_type"`
	PeriodStart  time.Time       `json:"periodStart" db:"period_start"`
	PeriodEnd    time.Time       `json:"periodEnd" db:"period_end"`
	Breakdown    string          `json:"breakdown" db:"breakdown"`
	CalculatedAt time.Time       `json:"calculatedAt" db:"calculated_at"`
}

// IncomeSource is a recurring inflow.
type IncomeSource struct {
	ID                 string           `json:"id" db:"id"`
	TaxProfileID       *string          `json:"taxProfileId" db:"tax_profile_id"`
	Name               string           `json:"name" db:"name"`
	Currency           string           `json:"currency" db:"currency"`
	BaseAmount         float64          `json:"baseAmount" db:"base_amount"`
	IsPreTax           bool             `json:"isPreTax" db:"is_pre_tax"`
	PaymentFrequency   PaymentFrequency `json:"paymentFrequency" db:"payment_frequency"`
	NextPaymentDate    *Date            `json:"nextPaymentDate" db:"next_payment_date"`
	AnnualIncreaseRate *float64         `json:"annualIncreaseRate" db:"annual_increase_rate"`
	EmployerName       *string          `json:"employerName" db:"employer_name"`
	Notes              *string          `json:"notes" db:"notes"`
	IsActive           bool             `json:"isActive" db:"is_active"`
	TargetAccountID    *string          `json:"targetAccountId" db:"target_account_id"`
}

// ExpenseDefinition is a recurring outflow.
type ExpenseDefinition struct {
	ID                    string           `json:"id" db:"id"`
	LinkedAccountID       *string          `json:"linkedAccountId" db:"linked_account_id"`
	Name                  string           `json:"name" db:"name"`
	Currency              string           `json:"currency" db:"currency"`
	AmountType            AmountType       `json:"amountType" db:"amount_type"`
	AmountValue           *float64         `json:"amountValue" db:"amount_value"`
	AmountFormula         *string          `json:"amountFormula" db:"amount_formula"`
	Frequency             PaymentFrequency `json:"frequency" db:"frequency"`
	StartDate             *Date            `json:"startDate" db:"start_date"`
	Category              string           `json:"category" db:"category"`
	IsTaxDeductible       bool             `json:"isTaxDeductible" db:"is_tax_deductible"`
	InflationAdjusted     bool             `json:"inflationAdjusted" db:"inflation_adjusted"`
	IsActive              bool             `json:"isActive" db:"is_active"`
	EndConditionType      EndConditionType `json:"endConditionType" db:"end_condition_type"`
	EndConditionAccountID *string          `json:"endConditionAccountId" db:"end_condition_account_id"`
	EndDate               *Date            `json:"endDate" db:"end_date"`
	EndAmountThreshold    *float64         `json:"endAmountThreshold" db:"end_amount_threshold"`
}

// InvestmentContribution is a recurring transfer into an investment account.
type InvestmentContribution struct {
	ID                    string           `json:"id" db:"id"`
	TargetAccountID       *string          `json:"targetAccountId" db:"target_account_id"`
	SourceAccountID       *string          `json:"sourceAccountId" db:"source_account_id"`
	Name                  string           `json:"name" db:"name"`
	Currency              string           `json:"currency" db:"currency"`
	Amount                float64          `json:"amount" db:"amount"`
	Frequency             PaymentFrequency `json:"frequency" db:"frequency"`
	Category              *string          `json:"category" db:"category"`
	AnnualIncreaseRate    *float64         `json:"annualIncreaseRate" db:"annual_increase_rate"`
	Notes                 *string          `json:"notes" db:"notes"`
	IsActive              bool             `json:"isActive" db:"is_active"`
	StartDate             *Date            `json:"startDate" db:"start_date"`
	EndConditionType      EndConditionType `json:"endConditionType" db:"end_condition_type"`
	EndConditionAccountID *string          `json:"endConditionAccountId" db:"end_condition_account_id"`
	EndDate               *Date            `json:"endDate" db:"end_date"`
	EndAmountThreshold    *float64         `json:"endAmountThreshold" db:"end_amount_threshold"`
}

// FinancialGoal is a savings target.
type FinancialGoal struct {
	ID            string  `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	TargetAmount  float64 `json:"targetAmount" db:"target_amount"`
	CurrentAmount float64 `json:"currentAmount" db:"current_amount"`
	Currency      string  `json:"currency" db:"currency"`
	TargetDate    *Date   `json:"targetDate" db:"target_date"`
	Priority      int     `json:"priority" db:"priority"`
	Category      *string `json:"category" db:"category"`
	IconName      *string `json:"iconName" db:"icon_name"`
	Notes         *string `json:"notes" db:"notes"`
	IsActive      bool    `json:"isActive" db:"is_active"`
}

// FxRate is one currency pair quote.
type FxRate struct {
	ID            string    `json:"id" db:"id"`
	BaseCurrency  string    `json:"baseCurrency" db:"base_currency"`
	QuoteCurrency string    `json:"quoteCurrency" db:"quote_currency"`
	Rate          float64   `json:"rate" db:"rate"`
	RateTimestamp time.Time `json:"rateTimestamp" db:"rate_timestamp"`
	Source        string    `json:"source" db:"source"`
}

// Transaction moves money out of and/or into an account.
type Transaction struct {
	ID                 string              `json:"id" db:"id"`
	SourceAccountID    *string             `json:"sourceAccountId" db:"source_account_id"`
	TargetAccountID    *string             `json:"targetAccountId" db:"target_account_id"`
	Currency           string              `json:"currency" db:"currency"`
	Amount             float64             `json:"amount" db:"amount"`
	AmountHomeCurrency *float64            `json:"amountHomeCurrency" db:"amount_home_currency"`
	FxRateUsed         *float64            `json:"fxRateUsed" db:"fx_rate_used"`
	Category           TransactionCategory `json:"category" db:"category"`
	Subcategory        *string             `json:"subcategory" db:"subcategory"`
	Tags               []string            `json:"tags" db:"tags"`
	Description        *string             `json:"description" db:"description"`
	Notes              *string             `json:"notes" db:"notes"`
	TransactionDate    Date                `json:"transactionDate" db:"transaction_date"`
	RecordedAt         time.Time           `json:"recordedAt" db:"recorded_at"`
	Source             string              `json:"source" db:"source"`
	IsReconciled       bool                `json:"isReconciled" db:"is_reconciled"`
}

// SimulationScenario is a named set of projection assumptions.
type SimulationScenario struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Description     *string    `json:"description" db:"description"`
	StartDate       Date       `json:"startDate" db:"start_date"`
	EndDate         *Date      `json:"endDate" db:"end_date"`
	EndCondition    *string    `json:"endCondition" db:"end_condition"`
	BaseAssumptions string     `json:"baseAssumptions" db:"base_assumptions"`
	IsBaseline      bool       `json:"isBaseline" db:"is_baseline"`
	LastRunAt       *time.Time `json:"lastRunAt" db:"last_run_at"`
}

// SimulationEvent is a one-off or recurring change inside a scenario.
type SimulationEvent struct {
	ID                string         `json:"id" db:"id"`
	ScenarioID        string         `json:"scenarioId" db:"scenario_id"`
	Name              string         `json:"name" db:"name"`
	Description       *string        `json:"description" db:"description"`
	TriggerType       SimTriggerType `json:"triggerType" db:"trigger_type"`
	TriggerDate       *Date          `json:"triggerDate" db:"trigger_date"`
	TriggerAge        *int           `json:"triggerAge" db:"trigger_age"`
	TriggerCondition  *string        `json:"triggerCondition" db:"trigger_condition"`
	EventType         string         `json:"eventType" db:"event_type"`
	Currency          *string        `json:"currency" db:"currency"`
	AmountType        AmountType     `json:"amountType" db:"amount_type"`
	AmountValue       *float64       `json:"amountValue" db:"amount_value"`
	AffectedAccountID *string        `json:"affectedAccountId" db:"affected_account_id"`
	AppliesOnce       bool           `json:"appliesOnce" db:"applies_once"`
	SortOrder         int            `json:"sortOrder" db:"sort_order"`
	IsActive          bool           `json:"isActive" db:"is_active"`
}

// AccountProjection is one account's projected balance for a period.
type AccountProjection struct {
	ID                  string   `json:"id" db:"id"`
	ScenarioID          string   `json:"scenarioId" db:"scenario_id"`
	AccountID           string   `json:"accountId" db:"account_id"`
	PeriodDate          Date     `json:"periodDate" db:"period_date"`
	Balance             float64  `json:"balance" db:"balance"`
	BalanceHomeCurrency *float64 `json:"balanceHomeCurrency" db:"balance_home_currency"`
	PeriodIncome        *float64 `json:"periodIncome" db:"period_income"`
	PeriodExpenses      *float64 `json:"periodExpenses" db:"period_expenses"`
	PeriodInterest      *float64 `json:"periodInterest" db:"period_interest"`
}

// NetWorthProjection is a scenario's projected net worth for a period.
type NetWorthProjection struct {
	ID                  string  `json:"id" db:"id"`
	ScenarioID          string  `json:"scenarioId" db:"scenario_id"`
	PeriodDate          Date    `json:"periodDate" db:"period_date"`
	TotalAssets         float64 `json:"totalAssets" db:"total_assets"`
	TotalLiabilities    float64 `json:"totalLiabilities" db:"total_liabilities"`
	NetWorth            float64 `json:"netWorth" db:"net_worth"`
	BreakdownByType     string  `json:"breakdownByType" db:"breakdown_by_type"`
	BreakdownByCurrency string  `json:"breakdownByCurrency" db:"breakdown_by_currency"`
}

// LongevitySnapshot is one life-expectancy estimate.
type LongevitySnapshot struct {
	ID                     string    `json:"id" db:"id"`
	CalculatedAt           time.Time `json:"calculatedAt" db:"calculated_at"`
	BaselineLifeExpectancy float64   `json:"baselineLifeExpectancy" db:"baseline_life_expectancy"`
	EstimatedYearsAdded    float64   `json:"estimatedYearsAdded" db:"estimated_years_added"`
	AdjustedLifeExpectancy float64   `json:"adjustedLifeExpectancy" db:"adjusted_life_expectancy"`
	Breakdown              string    `json:"breakdown" db:"breakdown"`
	InputMetricsSnapshot   string    `json:"inputMetricsSnapshot" db:"input_metrics_snapshot"`
	ConfidenceLevel        string    `json:"confidenceLevel" db:"confidence_level"`
}

// Achievement is an unlockable badge.
type Achievement struct {
	ID              string  `json:"id" db:"id"`
	Code            string  `json:"code" db:"code"`
	Name            string  `json:"name" db:"name"`
	Description     *string `json:"description" db:"description"`
	Icon            *string `json:"icon" db:"icon"`
	XpValue         int     `json:"xpValue" db:"xp_value"`
	Category        string  `json:"category" db:"category"`
	Tier            string  `json:"tier" db:"tier"`
	UnlockCondition string  `json:"unlockCondition" db:"unlock_condition"`
	IsActive        bool    `json:"isActive" db:"is_active"`
	SortOrder       int     `json:"sortOrder" db:"sort_order"`
}

// UserAchievement records that a user unlocked an achievement. The document
// refers to the achievement by code; AchievementID is resolved on import.
type UserAchievement struct {
	ID              string    `json:"id" db:"id"`
	AchievementCode string    `json:"achievementCode" db:"achievement_code" store:"readonly"`
	AchievementID   string    `json:"-" db:"achievement_id"`
	UnlockedAt      time.Time `json:"unlockedAt" db:"unlocked_at"`
	Progress        int       `json:"progress" db:"progress"`
	UnlockContext   *string   `json:"unlockContext" db:"unlock_context"`
}

// UserXP is the user's experience total. A document carries at most one.
type UserXP struct {
	ID            string `json:"-" db:"id"`
	TotalXp       int64  `json:"totalXp" db:"total_xp"`
	Level         int    `json:"level" db:"level"`
	WeeklyXp      int    `json:"weeklyXp" db:"weekly_xp"`
	WeekStartDate Date   `json:"weekStartDate" db:"week_start_date"`
}

// NetWorthSnapshot is the user's net worth on one day.
type NetWorthSnapshot struct {
	ID                  string  `json:"id" db:"id"`
	SnapshotDate        Date    `json:"snapshotDate" db:"snapshot_date"`
	TotalAssets         float64 `json:"totalAssets" db:"total_assets"`
	TotalLiabilities    float64 `json:"totalLiabilities" db:"total_liabilities"`
	NetWorth            float64 `json:"netWorth" db:"net_worth"`
	HomeCurrency        string  `json:"homeCurrency" db:"home_currency"`
	BreakdownByType     string  `json:"breakdownByType" db:"breakdown_by_type"`
	BreakdownByCurrency string  `json:"breakdownByCurrency" db:"breakdown_by_currency"`
	AccountCount        int     `json:"accountCount" db:"account_count"`
}
