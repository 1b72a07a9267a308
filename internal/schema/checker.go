package schema

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaDriftError reports a table whose live column set no longer matches
// the expected baseline. It is fatal: queries hard-code these columns, and
// proceeding would turn a rename into a silent wrong-column bug.
type SchemaDriftError struct {
	Table string
	// Diff is the sorted symmetric difference between expected and live
	// column names.
	Diff []string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("%s table structure changed, symmetric diff: [%s]", e.Table, strings.Join(e.Diff, " "))
}

// Checker validates the live schema against a baseline.
type Checker struct {
	baseline Baseline
	log      *zap.Logger
}

func NewChecker(baseline Baseline, log *zap.Logger) *Checker {
	return &Checker{baseline: baseline, log: log}
}

// Check fetches the live column set of every baseline table and fails on
// the first drifted one. It runs once, before any dependent query.
func (c *Checker) Check(gdb *gorm.DB) error {
	c.log.Info("starting store integrity check")

	tables := make([]string, 0, len(c.baseline))
	for table := range c.baseline {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		live, err := liveColumns(gdb, table)
		if err != nil {
			return fmt.Errorf("fetch columns of %s: %w", table, err)
		}
		if diff := symmetricDiff(c.baseline[table], live); len(diff) > 0 {
			return &SchemaDriftError{Table: table, Diff: diff}
		}
		c.log.Info("table structure OK", zap.String("table", table))
	}
	return nil
}

func liveColumns(gdb *gorm.DB, table string) ([]string, error) {
	columnTypes, err := gdb.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(columnTypes))
	for _, ct := range columnTypes {
		columns = append(columns, ct.Name())
	}
	sort.Strings(columns)
	return columns, nil
}

func symmetricDiff(expected, live []string) []string {
	inExpected := make(map[string]bool, len(expected))
	for _, column := range expected {
		inExpected[column] = true
	}
	inLive := make(map[string]bool, len(live))
	for _, column := range live {
		inLive[column] = true
	}

	var diff []string
	for _, column := range expected {
		if !inLive[column] {
			diff = append(diff, column)
		}
	}
	for _, column := range live {
		if !inExpected[column] {
			diff = append(diff, column)
		}
	}
	sort.Strings(diff)
	return diff
}
