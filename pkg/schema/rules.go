package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// ColumnOrderRule checks that the named columns appear in the given order.
// The dumped tables keep their column order stable so that files produced by
// different releases line up; readers of the csv dumps in particular rely on
// the header order.
type ColumnOrderRule struct {
	// OrderedColumns is the expected column order. Columns outside the list
	// are ignored.
	OrderedColumns []string
}

// Validate implements ValidationRule.Validate.
func (r *ColumnOrderRule) Validate(schema *arrow.Schema) (bool, error) {
	if len(r.OrderedColumns) == 0 {
		return true, nil
	}

	positions := make([]int, 0, len(r.OrderedColumns))
	for _, name := range r.OrderedColumns {
		indices := schema.FieldIndices(name)
		if len(indices) == 0 {
			// Missing fields are the RequiredFieldsRule's business.
			continue
		}
		positions = append(positions, indices[0])
	}

	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			return false, fmt.Errorf("columns out of order: expected %s",
				strings.Join(r.OrderedColumns, ", "))
		}
	}
	return true, nil
}

// Name implements ValidationRule.Name.
func (r *ColumnOrderRule) Name() string {
	return "ColumnOrderRule"
}

// Description implements ValidationRule.Description.
func (r *ColumnOrderRule) Description() string {
	return "Validates that columns appear in the expected order"
}

// entityColumns lists the columns of a single-entity claim table in order.
func entityColumns() []string {
	return []string{core.ColItem, core.ColProperty, core.ColValue}
}

// mergedColumns lists the columns of a merged comparison table in order.
func mergedColumns() []string {
	return []string{core.ColSourceItem, core.ColProperty, core.ColSourceValue, core.ColTargetItem, core.ColTargetValue}
}

// claimTableRules builds the rule set shared by all claim tables: every
// column present, in order, utf8 typed and non-nullable.
func claimTableRules(columns []string) []ValidationRule {
	allowedTypes := make(map[string][]arrow.DataType, len(columns))
	for _, name := range columns {
		allowedTypes[name] = []arrow.DataType{arrow.BinaryTypes.String}
	}
	return []ValidationRule{
		&RequiredFieldsRule{RequiredFields: columns},
		&ColumnOrderRule{OrderedColumns: columns},
		&FieldTypeRule{AllowedTypes: allowedTypes},
		&NullabilityRule{NonNullableFields: columns},
	}
}

// EntityTableRules returns the rules a single-entity claim table must satisfy:
// the Item, Property and Value columns, in that order, all utf8 and
// non-nullable.
func EntityTableRules() []ValidationRule {
	return claimTableRules(entityColumns())
}

// MergedTableRules returns the rules a merged comparison table must satisfy:
// the five join columns with their _item1/_item2 suffixes, in order, all utf8
// and non-nullable.
func MergedTableRules() []ValidationRule {
	return claimTableRules(mergedColumns())
}

// NewEntityTableValidator creates a validator for single-entity claim tables.
func NewEntityTableValidator() *ArrowSchemaValidator {
	return NewArrowSchemaValidator(EntityTableRules()...)
}

// NewMergedTableValidator creates a validator for merged comparison tables.
func NewMergedTableValidator() *ArrowSchemaValidator {
	return NewArrowSchemaValidator(MergedTableRules()...)
}

// RulesForSchema returns the canonical rule set matching the table shape.
// Schemas carrying the suffixed join columns are treated as merged comparison
// tables, everything else as a single-entity claim table.
func RulesForSchema(schema *arrow.Schema) []ValidationRule {
	if len(schema.FieldIndices(core.ColSourceItem)) > 0 {
		return MergedTableRules()
	}
	return EntityTableRules()
}

// ValidatorForSchema picks the validator matching the table shape.
func ValidatorForSchema(schema *arrow.Schema) *ArrowSchemaValidator {
	return NewArrowSchemaValidator(RulesForSchema(schema)...)
}
