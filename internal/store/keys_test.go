package store

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/lifeos-app/lifeos/internal/db/migrations"
	"github.com/lifeos-app/lifeos/internal/models"
)

var (
	uniqueIndexRe = regexp.MustCompile(`CREATE UNIQUE INDEX \w+ ON (\w+) \(([^)]+)\)`)
	tableRe       = regexp.MustCompile(`(?s)CREATE TABLE (\w+) \((.*?)\n\);`)
	tableUniqueRe = regexp.MustCompile(`UNIQUE \(([^)]+)\)`)
	columnUnique  = regexp.MustCompile(`(?m)^\s+(\w+)\s+[^\n]*\bUNIQUE\b`)
)

// uniqueKeys collects every unique column set declared by the migrations as
// "table(col, col)".
func uniqueKeys(t *testing.T) map[string]bool {
	t.Helper()

	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatal(err)
	}

	keys := map[string]bool{}

	for _, name := range files {
		raw, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatal(err)
		}

		up, _, _ := strings.Cut(string(raw), "-- +goose Down")

		for _, m := range uniqueIndexRe.FindAllStringSubmatch(up, -1) {
			keys[m[1]+"("+m[2]+")"] = true
		}

		for _, m := range tableRe.FindAllStringSubmatch(up, -1) {
			for _, u := range tableUniqueRe.FindAllStringSubmatch(m[2], -1) {
				keys[m[1]+"("+u[1]+")"] = true
			}

			for _, c := range columnUnique.FindAllStringSubmatch(m[2], -1) {
				keys[m[1]+"("+c[1]+")"] = true
			}
		}
	}

	return keys
}

func TestNaturalKeys_HaveUniqueIndexes(t *testing.T) {
	const id = "0b4cf0a4-8f52-4f7e-9a55-3c1d5f2e7a10"

	records := []models.Record{
		&models.Dimension{}, &models.MetricDefinition{}, &models.ScoreDefinition{},
		&models.TaxProfile{}, &models.LongevityModel{}, &models.Account{},
		&models.Milestone{}, &models.Task{}, &models.Streak{}, &models.MetricRecord{},
		&models.ScoreRecord{}, &models.IncomeSource{}, &models.ExpenseDefinition{},
		&models.InvestmentContribution{}, &models.FinancialGoal{}, &models.FxRate{},
		&models.Transaction{ID: id}, &models.SimulationScenario{}, &models.SimulationEvent{ID: id},
		&models.AccountProjection{}, &models.NetWorthProjection{}, &models.LongevitySnapshot{},
		&models.Achievement{}, &models.UserAchievement{}, &models.UserXP{}, &models.NetWorthSnapshot{},
	}

	if len(records) != len(models.Kinds) {
		t.Fatalf("records cover %d kinds, want %d", len(records), len(models.Kinds))
	}

	keys := uniqueKeys(t)

	for _, rec := range records {
		key, ok := rec.NaturalKey("u1")
		if !ok {
			continue
		}

		// Keys that include the primary key are unique already.
		if key.Columns[len(key.Columns)-1] == "id" {
			continue
		}

		tbl, err := tableFor(rec.Kind())
		if err != nil {
			t.Fatal(err)
		}

		want := tbl.name + "(" + strings.Join(key.Columns, ", ") + ")"
		if !keys[want] {
			t.Errorf("%s: no unique index on %s", rec.Kind(), want)
		}
	}
}
