package schema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ArrowSchemaValidator implements the SchemaValidator interface.
type ArrowSchemaValidator struct {
	rules           []ValidationRule
	validationLevel ValidationLevel
}

// NewArrowSchemaValidator creates a validator with the given rules.
func NewArrowSchemaValidator(rules ...ValidationRule) *ArrowSchemaValidator {
	return &ArrowSchemaValidator{
		rules:           rules,
		validationLevel: ValidationLevelCompatible,
	}
}

// AddRule adds a validation rule to the validator.
func (v *ArrowSchemaValidator) AddRule(rule ValidationRule) {
	v.rules = append(v.rules, rule)
}

// SetValidationLevel sets the validation level.
func (v *ArrowSchemaValidator) SetValidationLevel(level ValidationLevel) {
	v.validationLevel = level
}

// ValidateSchema checks if a schema is valid according to the validator's rules.
func (v *ArrowSchemaValidator) ValidateSchema(schema *arrow.Schema) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make(map[string][]string),
		Warnings: make(map[string][]string),
	}

	for _, rule := range v.rules {
		valid, err := rule.Validate(schema)
		if !valid {
			result.Valid = false
			if err != nil {
				result.Errors[rule.Name()] = append(result.Errors[rule.Name()], err.Error())
			}
		}
	}

	return result
}

// ValidateAgainstTarget checks if a schema is compatible with a target schema.
// The strictness of the comparison follows the validation level.
func (v *ArrowSchemaValidator) ValidateAgainstTarget(schema, targetSchema *arrow.Schema) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make(map[string][]string),
		Warnings: make(map[string][]string),
	}

	switch v.validationLevel {
	case ValidationLevelStrict:
		v.validateStrictCompatibility(schema, targetSchema, &result)
	case ValidationLevelCompatible:
		v.validateCompatible(schema, targetSchema, &result)
	case ValidationLevelRelaxed:
		v.validateRelaxed(schema, targetSchema, &result)
	}

	return result
}

// fieldsByName indexes a schema's fields by name.
func fieldsByName(schema *arrow.Schema) map[string]arrow.Field {
	fields := make(map[string]arrow.Field, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		fields[field.Name] = field
	}
	return fields
}

// validateStrictCompatibility requires the schemas to match exactly, field by
// field, including order and nullability.
func (v *ArrowSchemaValidator) validateStrictCompatibility(schema, targetSchema *arrow.Schema, result *ValidationResult) {
	if schema.NumFields() != targetSchema.NumFields() {
		result.Valid = false
		result.Errors["SchemaStructure"] = append(result.Errors["SchemaStructure"],
			fmt.Sprintf("field count mismatch: source has %d fields, target has %d fields",
				schema.NumFields(), targetSchema.NumFields()))
		return
	}

	for i := 0; i < schema.NumFields(); i++ {
		sourceField := schema.Field(i)
		targetField := targetSchema.Field(i)

		if sourceField.Name != targetField.Name {
			result.Valid = false
			result.Errors["SchemaStructure"] = append(result.Errors["SchemaStructure"],
				fmt.Sprintf("field name mismatch at position %d: source has '%s', target has '%s'",
					i, sourceField.Name, targetField.Name))
			continue
		}

		if !arrow.TypeEqual(sourceField.Type, targetField.Type) {
			result.Valid = false
			result.Errors["SchemaStructure"] = append(result.Errors["SchemaStructure"],
				fmt.Sprintf("field type mismatch for '%s': source has '%s', target has '%s'",
					sourceField.Name, sourceField.Type, targetField.Type))
		}

		if sourceField.Nullable != targetField.Nullable {
			result.Valid = false
			result.Errors["SchemaStructure"] = append(result.Errors["SchemaStructure"],
				fmt.Sprintf("nullability mismatch for field '%s': source is %v, target is %v",
					sourceField.Name, sourceField.Nullable, targetField.Nullable))
		}
	}
}

// validateCompatible allows the target schema to evolve from the source.
// Added fields and relaxed nullability are warnings, while type changes and
// removed fields are errors.
func (v *ArrowSchemaValidator) validateCompatible(schema, targetSchema *arrow.Schema, result *ValidationResult) {
	sourceFields := fieldsByName(schema)
	targetFields := fieldsByName(targetSchema)

	for name, targetField := range targetFields {
		sourceField, exists := sourceFields[name]
		if !exists {
			result.Warnings["SchemaEvolution"] = append(result.Warnings["SchemaEvolution"],
				fmt.Sprintf("new field '%s' in target schema", name))
			continue
		}

		if !arrow.TypeEqual(sourceField.Type, targetField.Type) {
			result.Valid = false
			result.Errors["SchemaCompatibility"] = append(result.Errors["SchemaCompatibility"],
				fmt.Sprintf("incompatible type change for field '%s': from '%s' to '%s'",
					name, sourceField.Type, targetField.Type))
		}

		if !sourceField.Nullable && targetField.Nullable {
			result.Warnings["SchemaEvolution"] = append(result.Warnings["SchemaEvolution"],
				fmt.Sprintf("relaxed nullability for field '%s'", name))
		} else if sourceField.Nullable && !targetField.Nullable {
			result.Valid = false
			result.Errors["SchemaCompatibility"] = append(result.Errors["SchemaCompatibility"],
				fmt.Sprintf("tightened nullability for field '%s'", name))
		}
	}

	for name := range sourceFields {
		if _, exists := targetFields[name]; !exists {
			result.Valid = false
			result.Errors["SchemaCompatibility"] = append(result.Errors["SchemaCompatibility"],
				fmt.Sprintf("field '%s' removed in target schema", name))
		}
	}
}

// validateRelaxed only requires the fields the schemas share to have equal
// types. Disjoint fields are reported as warnings.
func (v *ArrowSchemaValidator) validateRelaxed(schema, targetSchema *arrow.Schema, result *ValidationResult) {
	sourceFields := fieldsByName(schema)
	targetFields := fieldsByName(targetSchema)

	common := 0
	for name, sourceField := range sourceFields {
		targetField, exists := targetFields[name]
		if !exists {
			result.Warnings["SchemaStructure"] = append(result.Warnings["SchemaStructure"],
				fmt.Sprintf("field '%s' exists only in source schema", name))
			continue
		}

		common++
		if !arrow.TypeEqual(sourceField.Type, targetField.Type) {
			result.Valid = false
			result.Errors["CommonFields"] = append(result.Errors["CommonFields"],
				fmt.Sprintf("incompatible type for common field '%s': source has '%s', target has '%s'",
					name, sourceField.Type, targetField.Type))
		}
	}

	for name := range targetFields {
		if _, exists := sourceFields[name]; !exists {
			result.Warnings["SchemaStructure"] = append(result.Warnings["SchemaStructure"],
				fmt.Sprintf("field '%s' exists only in target schema", name))
		}
	}

	if common == 0 {
		result.Valid = false
		result.Errors["CommonFields"] = append(result.Errors["CommonFields"],
			"schemas share no common fields")
	}
}

// NewStrictValidator creates a validator with strict validation level.
func NewStrictValidator(rules ...ValidationRule) *ArrowSchemaValidator {
	validator := NewArrowSchemaValidator(rules...)
	validator.SetValidationLevel(ValidationLevelStrict)
	return validator
}

// NewCompatibleValidator creates a validator with compatible validation level.
func NewCompatibleValidator(rules ...ValidationRule) *ArrowSchemaValidator {
	validator := NewArrowSchemaValidator(rules...)
	validator.SetValidationLevel(ValidationLevelCompatible)
	return validator
}

// NewRelaxedValidator creates a validator with relaxed validation level.
func NewRelaxedValidator(rules ...ValidationRule) *ArrowSchemaValidator {
	validator := NewArrowSchemaValidator(rules...)
	validator.SetValidationLevel(ValidationLevelRelaxed)
	return validator
}
