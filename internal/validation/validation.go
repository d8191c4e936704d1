package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var outputPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateTable checks that a table is rectangular and that no cell is nil, blank or NaN
func ValidateTable(headers []string, rows [][]interface{}) error {
	if len(headers) == 0 {
		return fmt.Errorf("table has no columns")
	}

	for i, row := range rows {
		if len(row) != len(headers) {
			return fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(headers))
		}
		for j, cell := range row {
			if isEmpty(cell) {
				return fmt.Errorf("row %d column %q is empty", i+1, headers[j])
			}
		}
	}

	return nil
}

func isEmpty(cell interface{}) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return math.IsNaN(v)
	}
	return false
}

// ValidateOutputPrefix checks that a prefix is safe to use in file names
func ValidateOutputPrefix(prefix string) error {
	if len(prefix) < 1 || len(prefix) > 64 {
		return fmt.Errorf("output prefix must be between 1 and 64 characters")
	}

	if !outputPrefixPattern.MatchString(prefix) {
		return fmt.Errorf("output prefix can only contain letters, numbers, underscores and hyphens")
	}

	return nil
}

// ValidateRunID checks that a run id is a UUID
func ValidateRunID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("run id must be a UUID")
	}
	return nil
}
