package models

import "strings"

// Enums travel as their string names. Parsing is case-insensitive and an
// unknown name falls back to the type's default rather than failing the row.

// AccountType classifies an account.
type AccountType string

// Account types.
const (
	AccountTypeBank       AccountType = "Bank"
	AccountTypeInvestment AccountType = "Investment"
	AccountTypeCrypto     AccountType = "Crypto"
	AccountTypeCredit     AccountType = "Credit"
	AccountTypeLoan       AccountType = "Loan"
	AccountTypeProperty   AccountType = "Property"
	AccountTypeOther      AccountType = "Other"
)

// CompoundingFrequency is how often account interest compounds.
type CompoundingFrequency string

// Compounding frequencies.
const (
	CompoundingNone       CompoundingFrequency = "None"
	CompoundingDaily      CompoundingFrequency = "Daily"
	CompoundingMonthly    CompoundingFrequency = "Monthly"
	CompoundingQuarterly  CompoundingFrequency = "Quarterly"
	CompoundingAnnually   CompoundingFrequency = "Annually"
	CompoundingContinuous CompoundingFrequency = "Continuous"
)

// MetricValueType is the value domain of a metric.
type MetricValueType string

// Metric value types.
const (
	MetricValueNumber  MetricValueType = "Number"
	MetricValueBoolean MetricValueType = "Boolean"
	MetricValueString  MetricValueType = "String"
	MetricValueEnum    MetricValueType = "Enum"
)

// AggregationType is how metric records roll up over a period.
type AggregationType string

// Aggregation types.
const (
	AggregationLast    AggregationType = "Last"
	AggregationSum     AggregationType = "Sum"
	AggregationAverage AggregationType = "Average"
	AggregationMin     AggregationType = "Min"
	AggregationMax     AggregationType = "Max"
	AggregationCount   AggregationType = "Count"
)

// MilestoneStatus is the lifecycle state of a milestone.
type MilestoneStatus string

// Milestone states.
const (
	MilestoneActive    MilestoneStatus = "Active"
	MilestoneCompleted MilestoneStatus = "Completed"
	MilestoneAbandoned MilestoneStatus = "Abandoned"
)

// TaskType classifies a task.
type TaskType string

// Task types.
const (
	TaskTypeHabit     TaskType = "Habit"
	TaskTypeOneOff    TaskType = "OneOff"
	TaskTypeScheduled TaskType = "Scheduled"
)

// Frequency is how often a task recurs.
type Frequency string

// Task frequencies.
const (
	FrequencyDaily     Frequency = "Daily"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyBiweekly  Frequency = "Biweekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyAnnually  Frequency = "Annually"
	FrequencyYearly    Frequency = "Yearly"
	FrequencyOnce      Frequency = "Once"
	FrequencyAdHoc     Frequency = "AdHoc"
)

// ScorePeriodType is the window a score record covers.
type ScorePeriodType string

// Score periods.
const (
	ScorePeriodDaily     ScorePeriodType = "Daily"
	ScorePeriodWeekly    ScorePeriodType = "Weekly"
	ScorePeriodMonthly   ScorePeriodType = "Monthly"
	ScorePeriodQuarterly ScorePeriodType = "Quarterly"
	ScorePeriodYearly    ScorePeriodType = "Yearly"
)

// PaymentFrequency is how often money moves for income, expenses and contributions.
type PaymentFrequency string

// Payment frequencies.
const (
	PaymentWeekly    PaymentFrequency = "Weekly"
	PaymentBiweekly  PaymentFrequency = "Biweekly"
	PaymentMonthly   PaymentFrequency = "Monthly"
	PaymentQuarterly PaymentFrequency = "Quarterly"
	PaymentAnnually  PaymentFrequency = "Annually"
	PaymentOnce      PaymentFrequency = "Once"
)

// AmountType is how an amount is derived.
type AmountType string

// Amount types.
const (
	AmountFixed      AmountType = "Fixed"
	AmountPercentage AmountType = "Percentage"
	AmountFormula    AmountType = "Formula"
)

// EndConditionType is what stops a recurring expense or contribution.
type EndConditionType string

// End conditions.
const (
	EndConditionNone                EndConditionType = "None"
	EndConditionUntilAccountSettled EndConditionType = "UntilAccountSettled"
	EndConditionUntilDate           EndConditionType = "UntilDate"
	EndConditionUntilAmount         EndConditionType = "UntilAmount"
)

// TransactionCategory classifies a transaction.
type TransactionCategory string

// Transaction categories.
const (
	TransactionIncome     TransactionCategory = "Income"
	TransactionExpense    TransactionCategory = "Expense"
	TransactionTransfer   TransactionCategory = "Transfer"
	TransactionInvestment TransactionCategory = "Investment"
	TransactionFee        TransactionCategory = "Fee"
	TransactionInterest   TransactionCategory = "Interest"
)

// SimTriggerType is what fires a simulation event.
type SimTriggerType string

// Simulation triggers.
const (
	TriggerDate      SimTriggerType = "Date"
	TriggerAge       SimTriggerType = "Age"
	TriggerCondition SimTriggerType = "Condition"
)

// parseEnum returns the canonical member matching s case-insensitively,
// or fallback when nothing matches.
func parseEnum[T ~string](s string, fallback T, members ...T) T {
	s = strings.TrimSpace(s)
	for _, m := range members {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}

	return fallback
}

// ParseAccountType parses s, defaulting to Bank.
func ParseAccountType(s string) AccountType {
	return parseEnum(s, AccountTypeBank,
		AccountTypeBank, AccountTypeInvestment, AccountTypeCrypto, AccountTypeCredit,
		AccountTypeLoan, AccountTypeProperty, AccountTypeOther)
}

// ParseCompoundingFrequency parses s, defaulting to Monthly.
func ParseCompoundingFrequency(s string) CompoundingFrequency {
	return parseEnum(s, CompoundingMonthly,
		CompoundingNone, CompoundingDaily, CompoundingMonthly, CompoundingQuarterly,
		CompoundingAnnually, CompoundingContinuous)
}

// ParseMetricValueType parses s, defaulting to Number.
func ParseMetricValueType(s string) MetricValueType {
	return parseEnum(s, MetricValueNumber,
		MetricValueNumber, MetricValueBoolean, MetricValueString, MetricValueEnum)
}

// ParseAggregationType parses s, defaulting to Last.
func ParseAggregationType(s string) AggregationType {
	return parseEnum(s, AggregationLast,
		AggregationLast, AggregationSum, AggregationAverage, AggregationMin, AggregationMax, AggregationCount)
}

// ParseMilestoneStatus parses s, defaulting to Active.
func ParseMilestoneStatus(s string) MilestoneStatus {
	return parseEnum(s, MilestoneActive, MilestoneActive, MilestoneCompleted, MilestoneAbandoned)
}

// ParseTaskType parses s, defaulting to Habit.
func ParseTaskType(s string) TaskType {
	return parseEnum(s, TaskTypeHabit, TaskTypeHabit, TaskTypeOneOff, TaskTypeScheduled)
}

// ParseFrequency parses s, defaulting to AdHoc.
func ParseFrequency(s string) Frequency {
	return parseEnum(s, FrequencyAdHoc,
		FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly,
		FrequencyAnnually, FrequencyYearly, FrequencyOnce, FrequencyAdHoc)
}

// ParseScorePeriodType parses s, defaulting to Daily.
func ParseScorePeriodType(s string) ScorePeriodType {
	return parseEnum(s, ScorePeriodDaily,
		ScorePeriodDaily, ScorePeriodWeekly, ScorePeriodMonthly, ScorePeriodQuarterly, ScorePeriodYearly)
}

// ParsePaymentFrequency parses s, defaulting to Monthly.
func ParsePaymentFrequency(s string) PaymentFrequency {
	return parseEnum(s, PaymentMonthly,
		PaymentWeekly, PaymentBiweekly, PaymentMonthly, PaymentQuarterly, PaymentAnnually, PaymentOnce)
}

// ParseAmountType parses s, defaulting to Fixed.
func ParseAmountType(s string) AmountType {
	return parseEnum(s, AmountFixed, AmountFixed, AmountPercentage, AmountFormula)
}

// ParseEndConditionType parses s, defaulting to None.
func ParseEndConditionType(s string) EndConditionType {
	return parseEnum(s, EndConditionNone,
		EndConditionNone, EndConditionUntilAccountSettled, EndConditionUntilDate, EndConditionUntilAmount)
}

// ParseTransactionCategory parses s, defaulting to Expense.
func ParseTransactionCategory(s string) TransactionCategory {
	return parseEnum(s, TransactionExpense,
		TransactionIncome, TransactionExpense, TransactionTransfer, TransactionInvestment,
		TransactionFee, TransactionInterest)
}

// ParseSimTriggerType parses s, defaulting to Date.
func ParseSimTriggerType(s string) SimTriggerType {
	return parseEnum(s, TriggerDate, TriggerDate, TriggerAge, TriggerCondition)
}
