package schema

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiparity/wikiparity/pkg/core"
)

func entityTestSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}

func mergedTestSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: core.ColSourceItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColSourceValue, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}

func TestRequiredFieldsRule(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)

	// Test valid case
	rule := &RequiredFieldsRule{
		RequiredFields: []string{core.ColItem, core.ColProperty},
	}
	valid, err := rule.Validate(schema)
	assert.True(t, valid)
	assert.NoError(t, err)

	// Test invalid case
	rule = &RequiredFieldsRule{
		RequiredFields: []string{core.ColItem, core.ColProperty, core.ColValue},
	}
	valid, err = rule.Validate(schema)
	assert.False(t, valid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), core.ColValue)
}

func TestFieldTypeRule(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)

	// Test valid case
	rule := &FieldTypeRule{
		AllowedTypes: map[string][]arrow.DataType{
			core.ColItem:  {arrow.BinaryTypes.String},
			core.ColValue: {arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64},
		},
	}
	valid, err := rule.Validate(schema)
	assert.True(t, valid)
	assert.NoError(t, err)

	// Test invalid case
	rule = &FieldTypeRule{
		AllowedTypes: map[string][]arrow.DataType{
			core.ColValue: {arrow.BinaryTypes.String},
		},
	}
	valid, err = rule.Validate(schema)
	assert.False(t, valid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Value'")

	// Test missing field
	rule = &FieldTypeRule{
		AllowedTypes: map[string][]arrow.DataType{
			"rank": {arrow.BinaryTypes.String},
		},
	}
	valid, err = rule.Validate(schema)
	assert.False(t, valid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "field 'rank' not found in schema")
}

func TestNullabilityRule(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	// Test valid case
	rule := &NullabilityRule{
		NonNullableFields: []string{core.ColItem},
	}
	valid, err := rule.Validate(schema)
	assert.True(t, valid)
	assert.NoError(t, err)

	// Test invalid case
	rule = &NullabilityRule{
		NonNullableFields: []string{core.ColItem, core.ColValue},
	}
	valid, err = rule.Validate(schema)
	assert.False(t, valid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), core.ColValue)
}

func TestColumnOrderRule(t *testing.T) {
	// Test valid case
	rule := &ColumnOrderRule{
		OrderedColumns: []string{core.ColItem, core.ColProperty, core.ColValue},
	}
	valid, err := rule.Validate(entityTestSchema())
	assert.True(t, valid)
	assert.NoError(t, err)

	// Test out of order case
	reversed := arrow.NewSchema([]arrow.Field{
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
	valid, err = rule.Validate(reversed)
	assert.False(t, valid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "columns out of order")

	// Missing columns are left to the required fields rule
	partial := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
	valid, err = rule.Validate(partial)
	assert.True(t, valid)
	assert.NoError(t, err)
}

func TestEntityTableValidator(t *testing.T) {
	validator := NewEntityTableValidator()

	result := validator.ValidateSchema(entityTestSchema())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// A nullable claim column fails the nullability rule
	nullable := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result = validator.ValidateSchema(nullable)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["NullabilityRule"][0], core.ColValue)
}

func TestMergedTableValidator(t *testing.T) {
	validator := NewMergedTableValidator()

	result := validator.ValidateSchema(mergedTestSchema())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// Swapping the join columns fails the column order rule
	swapped := arrow.NewSchema([]arrow.Field{
		{Name: core.ColSourceItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColSourceValue, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
	result = validator.ValidateSchema(swapped)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["ColumnOrderRule"][0], "columns out of order")
}

func TestValidatorForSchema(t *testing.T) {
	// Schemas with the suffixed join columns get the merged table validator
	validator := ValidatorForSchema(mergedTestSchema())
	result := validator.ValidateSchema(mergedTestSchema())
	assert.True(t, result.Valid)

	result = validator.ValidateSchema(entityTestSchema())
	assert.False(t, result.Valid)

	// Everything else gets the entity table validator
	validator = ValidatorForSchema(entityTestSchema())
	result = validator.ValidateSchema(entityTestSchema())
	assert.True(t, result.Valid)
}

func TestArrowSchemaValidator(t *testing.T) {
	validator := NewArrowSchemaValidator()

	validator.AddRule(&RequiredFieldsRule{
		RequiredFields: []string{core.ColItem, core.ColProperty},
	})
	validator.AddRule(&NullabilityRule{
		NonNullableFields: []string{core.ColItem},
	})

	// Test valid schema
	result := validator.ValidateSchema(entityTestSchema())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// Test invalid schema by adding a failing rule
	validator.AddRule(&RequiredFieldsRule{
		RequiredFields: []string{core.ColItem, core.ColProperty, "rank"},
	})
	result = validator.ValidateSchema(entityTestSchema())
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors["RequiredFieldsRule"][0], "rank")
}

func TestValidateAgainstTarget_Strict(t *testing.T) {
	validator := NewStrictValidator()

	// Test identical schemas (should pass)
	result := validator.ValidateAgainstTarget(entityTestSchema(), entityTestSchema())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// Test a type change (should fail)
	changed := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)
	result = validator.ValidateAgainstTarget(entityTestSchema(), changed)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors["SchemaStructure"][0], "field type mismatch")

	// Test a field count change (should fail)
	result = validator.ValidateAgainstTarget(entityTestSchema(), mergedTestSchema())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["SchemaStructure"][0], "field count mismatch")
}

func TestValidateAgainstTarget_Compatible(t *testing.T) {
	validator := NewCompatibleValidator()

	// An added field and relaxed nullability pass with warnings
	evolved := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "rank", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result := validator.ValidateAgainstTarget(entityTestSchema(), evolved)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Warnings["SchemaEvolution"], 2)
	assert.Contains(t, result.Warnings["SchemaEvolution"], "new field 'rank' in target schema")
	assert.Contains(t, result.Warnings["SchemaEvolution"], "relaxed nullability for field 'Value'")

	// A removed field fails
	extended := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "rank", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result = validator.ValidateAgainstTarget(extended, entityTestSchema())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["SchemaCompatibility"][0], "removed")

	// A type change fails
	changed := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)
	result = validator.ValidateAgainstTarget(entityTestSchema(), changed)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["SchemaCompatibility"][0], "incompatible type change for field 'Value'")
}

func TestValidateAgainstTarget_Relaxed(t *testing.T) {
	validator := NewRelaxedValidator()

	// Disjoint fields outside the common set pass with warnings
	partial := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "rank", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result := validator.ValidateAgainstTarget(entityTestSchema(), partial)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Warnings["SchemaStructure"], 2)

	// An incompatible common field fails
	changed := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "rank", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result = validator.ValidateAgainstTarget(entityTestSchema(), changed)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["CommonFields"][0], "incompatible type for common field 'Item'")

	// Schemas with nothing in common fail
	disjoint := arrow.NewSchema([]arrow.Field{
		{Name: "rank", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	result = validator.ValidateAgainstTarget(entityTestSchema(), disjoint)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["CommonFields"][0], "no common fields")
}

func TestNewValidatorFromSchemaFile(t *testing.T) {
	dir := t.TempDir()

	rulesPath := filepath.Join(dir, "rules.yaml")
	rules := `validation_level: strict
required_fields:
  - Item
  - Property
  - Value
non_nullable_fields:
  - Item
ordered_columns:
  - Item
  - Property
  - Value
field_types:
  Value:
    - string
`
	require.NoError(t, os.WriteFile(rulesPath, []byte(rules), 0644))

	validator, err := NewValidatorFromSchemaFile(rulesPath)
	require.NoError(t, err)

	result := validator.ValidateSchema(entityTestSchema())
	assert.True(t, result.Valid)

	missing := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
	result = validator.ValidateSchema(missing)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["RequiredFieldsRule"][0], core.ColProperty)
}

func TestNewValidatorFromSchemaFileErrors(t *testing.T) {
	dir := t.TempDir()

	// Missing file
	_, err := NewValidatorFromSchemaFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")

	// Unsupported extension
	tomlPath := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("level = 1"), 0644))
	_, err = NewValidatorFromSchemaFile(tomlPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema file format")

	// Unknown validation level
	levelPath := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(levelPath, []byte("validation_level: pedantic\n"), 0644))
	_, err = NewValidatorFromSchemaFile(levelPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation level")

	// Unknown field type
	typePath := filepath.Join(dir, "types.json")
	require.NoError(t, os.WriteFile(typePath, []byte(`{"field_types": {"Value": ["quaternion"]}}`), 0644))
	_, err = NewValidatorFromSchemaFile(typePath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported Arrow type")
}

type staticSchemaReader struct {
	schema *arrow.Schema
}

func (r *staticSchemaReader) Read(ctx context.Context) (arrow.Record, error) {
	return nil, io.EOF
}

func (r *staticSchemaReader) Schema() *arrow.Schema {
	return r.schema
}

func (r *staticSchemaReader) Close() error {
	return nil
}

func TestValidateReader(t *testing.T) {
	reader := &staticSchemaReader{schema: entityTestSchema()}

	result, err := ValidateReader(reader, NewEntityTableValidator())
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateReader(&staticSchemaReader{}, NewEntityTableValidator())
	assert.Error(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors["System"][0], "nil schema")
}

func TestCompareSchemas(t *testing.T) {
	report := CompareSchemas(entityTestSchema(), mergedTestSchema())
	assert.Contains(t, report, "Field count differs")
	assert.Contains(t, report, "Fields only in source schema")
	assert.Contains(t, report, "Fields only in target schema")
	assert.Contains(t, report, core.ColSourceItem)

	report = CompareSchemas(entityTestSchema(), entityTestSchema())
	assert.Contains(t, report, "None")
}

func TestSchemaToString(t *testing.T) {
	out := SchemaToString(entityTestSchema())
	assert.Contains(t, out, "Item: utf8 NOT NULL")
	assert.Contains(t, out, "Value: utf8 NOT NULL")
}

func TestPrintValidationResult(t *testing.T) {
	validator := NewEntityTableValidator()

	out := PrintValidationResult(validator.ValidateSchema(entityTestSchema()))
	assert.Contains(t, out, "Schema validation passed")

	nullable := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
	out = PrintValidationResult(validator.ValidateSchema(nullable))
	assert.Contains(t, out, "Schema validation failed")
	assert.Contains(t, out, "NullabilityRule")
}
