package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"gopkg.in/yaml.v3"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// SchemaConfig represents the configuration loaded from a rules file.
type SchemaConfig struct {
	// ValidationLevel determines how strict the validation should be.
	ValidationLevel string `json:"validation_level" yaml:"validation_level"`

	// RequiredFields lists field names that must be present.
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`

	// NonNullableFields lists fields that must not be nullable.
	NonNullableFields []string `json:"non_nullable_fields" yaml:"non_nullable_fields"`

	// FieldTypes maps field names to allowed type names.
	FieldTypes map[string][]string `json:"field_types" yaml:"field_types"`

	// OrderedColumns lists columns that must appear in the given order.
	OrderedColumns []string `json:"ordered_columns" yaml:"ordered_columns"`
}

// NewValidatorFromSchemaFile creates a validator from a rules file in JSON or
// YAML format. It backs the --rules flag of the schema command, for checking
// dumped files against site-specific expectations instead of the built-in
// claim table rules.
func NewValidatorFromSchemaFile(schemaPath string) (*ArrowSchemaValidator, error) {
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("schema file not found: %s", schemaPath)
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var config SchemaConfig
	ext := strings.ToLower(filepath.Ext(schemaPath))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON schema file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML schema file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema file format: %s (supported: .json, .yaml, .yml)", ext)
	}

	validator := NewArrowSchemaValidator()

	if config.ValidationLevel != "" {
		switch strings.ToLower(config.ValidationLevel) {
		case "strict":
			validator.SetValidationLevel(ValidationLevelStrict)
		case "compatible":
			validator.SetValidationLevel(ValidationLevelCompatible)
		case "relaxed":
			validator.SetValidationLevel(ValidationLevelRelaxed)
		default:
			return nil, fmt.Errorf("unknown validation level: %s", config.ValidationLevel)
		}
	}

	if len(config.RequiredFields) > 0 {
		validator.AddRule(&RequiredFieldsRule{
			RequiredFields: config.RequiredFields,
		})
	}

	if len(config.OrderedColumns) > 0 {
		validator.AddRule(&ColumnOrderRule{
			OrderedColumns: config.OrderedColumns,
		})
	}

	if len(config.NonNullableFields) > 0 {
		validator.AddRule(&NullabilityRule{
			NonNullableFields: config.NonNullableFields,
		})
	}

	if len(config.FieldTypes) > 0 {
		fieldTypeRule, err := createFieldTypeRule(config.FieldTypes)
		if err != nil {
			return nil, fmt.Errorf("failed to create field type rule: %w", err)
		}
		validator.AddRule(fieldTypeRule)
	}

	return validator, nil
}

// createFieldTypeRule creates a FieldTypeRule from a map of field names to allowed type names.
func createFieldTypeRule(fieldTypeConfig map[string][]string) (*FieldTypeRule, error) {
	allowedTypes := make(map[string][]arrow.DataType)

	for fieldName, typeStrings := range fieldTypeConfig {
		var types []arrow.DataType

		for _, typeStr := range typeStrings {
			dataType, err := parseArrowType(typeStr)
			if err != nil {
				return nil, fmt.Errorf("invalid type specification for field '%s': %w", fieldName, err)
			}
			types = append(types, dataType)
		}

		allowedTypes[fieldName] = types
	}

	return &FieldTypeRule{
		AllowedTypes: allowedTypes,
	}, nil
}

// parseArrowType converts a type name from a rules file to an Arrow DataType.
func parseArrowType(typeStr string) (arrow.DataType, error) {
	switch strings.ToLower(typeStr) {
	case "bool", "boolean":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int32", "int":
		return arrow.PrimitiveTypes.Int32, nil
	case "int64", "long":
		return arrow.PrimitiveTypes.Int64, nil
	case "float", "float32":
		return arrow.PrimitiveTypes.Float32, nil
	case "double", "float64":
		return arrow.PrimitiveTypes.Float64, nil
	case "string", "utf8":
		return arrow.BinaryTypes.String, nil
	case "large_string", "large_utf8":
		return arrow.BinaryTypes.LargeString, nil
	case "binary":
		return arrow.BinaryTypes.Binary, nil
	case "date":
		return arrow.FixedWidthTypes.Date32, nil
	case "timestamp":
		return &arrow.TimestampType{Unit: arrow.Second}, nil
	case "timestamp[ms]":
		return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
	case "timestamp[us]":
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case "timestamp[ns]":
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	default:
		return nil, fmt.Errorf("unsupported Arrow type: %s", typeStr)
	}
}

// SchemaToString converts an Arrow schema to a human-readable string.
func SchemaToString(schema *arrow.Schema) string {
	var builder strings.Builder
	builder.WriteString("Schema:\n")

	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		nullabilityStr := "NOT NULL"
		if field.Nullable {
			nullabilityStr = "NULL"
		}
		builder.WriteString(fmt.Sprintf("  %s: %s %s\n", field.Name, field.Type, nullabilityStr))
	}

	metadata := schema.Metadata()
	if metadata.Len() > 0 {
		builder.WriteString("\nMetadata:\n")
		for i, key := range metadata.Keys() {
			value := metadata.Values()[i]
			builder.WriteString(fmt.Sprintf("  %s: %s\n", key, value))
		}
	}

	return builder.String()
}

// PrintValidationResult formats a validation result in a human-readable way.
func PrintValidationResult(result ValidationResult) string {
	var builder strings.Builder

	if result.Valid {
		builder.WriteString("Schema validation passed.\n")
	} else {
		builder.WriteString("Schema validation failed!\n")
	}

	if len(result.Errors) > 0 {
		builder.WriteString("\nErrors:\n")
		for ruleName, errors := range result.Errors {
			builder.WriteString(fmt.Sprintf("  Rule '%s':\n", ruleName))
			for _, err := range errors {
				builder.WriteString(fmt.Sprintf("    - %s\n", err))
			}
		}
	}

	if len(result.Warnings) > 0 {
		builder.WriteString("\nWarnings:\n")
		for ruleName, warnings := range result.Warnings {
			builder.WriteString(fmt.Sprintf("  Rule '%s':\n", ruleName))
			for _, warning := range warnings {
				builder.WriteString(fmt.Sprintf("    - %s\n", warning))
			}
		}
	}

	return builder.String()
}

// ValidateReader validates the schema of an open dataset reader.
func ValidateReader(reader core.DatasetReader, validator SchemaValidator) (ValidationResult, error) {
	schema := reader.Schema()
	if schema == nil {
		return ValidationResult{
			Valid: false,
			Errors: map[string][]string{
				"System": {"reader returned nil schema"},
			},
		}, fmt.Errorf("reader returned nil schema")
	}

	return validator.ValidateSchema(schema), nil
}

// CompareSchemas compares two schemas and returns a human-readable report of the differences.
func CompareSchemas(sourceSchema, targetSchema *arrow.Schema) string {
	var builder strings.Builder
	builder.WriteString("Schema Comparison:\n\n")

	if sourceSchema.NumFields() != targetSchema.NumFields() {
		builder.WriteString(fmt.Sprintf("Field count differs: source=%d, target=%d\n\n",
			sourceSchema.NumFields(), targetSchema.NumFields()))
	}

	sourceFields := fieldsByName(sourceSchema)
	targetFields := fieldsByName(targetSchema)

	var onlyInSource []string
	for name := range sourceFields {
		if _, exists := targetFields[name]; !exists {
			onlyInSource = append(onlyInSource, name)
		}
	}

	if len(onlyInSource) > 0 {
		builder.WriteString("Fields only in source schema:\n")
		for _, name := range onlyInSource {
			field := sourceFields[name]
			builder.WriteString(fmt.Sprintf("  %s: %s\n", name, field.Type))
		}
		builder.WriteString("\n")
	}

	var onlyInTarget []string
	for name := range targetFields {
		if _, exists := sourceFields[name]; !exists {
			onlyInTarget = append(onlyInTarget, name)
		}
	}

	if len(onlyInTarget) > 0 {
		builder.WriteString("Fields only in target schema:\n")
		for _, name := range onlyInTarget {
			field := targetFields[name]
			builder.WriteString(fmt.Sprintf("  %s: %s\n", name, field.Type))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("Common fields with differences:\n")
	hasDifferences := false

	for name, sourceField := range sourceFields {
		targetField, exists := targetFields[name]
		if !exists {
			continue
		}

		differences := []string{}

		if !arrow.TypeEqual(sourceField.Type, targetField.Type) {
			differences = append(differences, fmt.Sprintf("type: %s -> %s",
				sourceField.Type, targetField.Type))
		}

		if sourceField.Nullable != targetField.Nullable {
			differences = append(differences, fmt.Sprintf("nullability: %t -> %t",
				sourceField.Nullable, targetField.Nullable))
		}

		if len(differences) > 0 {
			hasDifferences = true
			builder.WriteString(fmt.Sprintf("  %s: %s\n", name, strings.Join(differences, ", ")))
		}
	}

	if !hasDifferences {
		builder.WriteString("  None\n")
	}

	return builder.String()
}
