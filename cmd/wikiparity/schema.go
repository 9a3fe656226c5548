package main

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/spf13/cobra"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/readers"
	"github.com/wikiparity/wikiparity/pkg/schema"
)

// SchemaOptions represents the options for the schema command.
type SchemaOptions struct {
	Source     string
	Target     string
	SourceType string
	TargetType string
	Level      string
	RulesFile  string
}

// newSchemaCommand creates the schema command.
func newSchemaCommand() *cobra.Command {
	options := &SchemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema <file> [target]",
		Short: "Validate and compare dump file schemas",
		Long: `Schema validates the Arrow schema of a dump file against the canonical
entity or merged table shape. With a second file it also checks that the
source schema is compatible with the target schema.`,
		Example: `  wikiparity schema wikidata_data/csv/data1.csv
  wikiparity schema wikidata_data/arrow/combined.arrow --level strict
  wikiparity schema wikidata_data/parquet/data1.parquet wikidata_data/parquet/data2.parquet`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Source = args[0]
			if len(args) > 1 {
				options.Target = args[1]
			}
			return runSchemaValidation(cmd, options)
		},
	}

	cmd.Flags().StringVar(&options.SourceType, "source-type", "auto", "Source file type (auto, csv, json, arrow, parquet)")
	cmd.Flags().StringVar(&options.TargetType, "target-type", "auto", "Target file type (auto, csv, json, arrow, parquet)")
	cmd.Flags().StringVar(&options.Level, "level", "", "Validation level (strict, compatible, relaxed)")
	cmd.Flags().StringVar(&options.RulesFile, "rules", "", "YAML schema rules file overriding the canonical rules")

	return cmd
}

// runSchemaValidation validates the source schema and, when a target is
// given, its compatibility with the target schema.
func runSchemaValidation(cmd *cobra.Command, options *SchemaOptions) error {
	sourceReader, sourceType, err := openReader(options.Source, options.SourceType)
	if err != nil {
		return err
	}
	defer sourceReader.Close()

	sourceSchema := sourceReader.Schema()
	if sourceSchema == nil {
		return fmt.Errorf("failed to read schema from %s", options.Source)
	}
	cmd.Println(schema.SchemaToString(sourceSchema))

	validator, err := buildValidator(sourceSchema, sourceType, options)
	if err != nil {
		return err
	}

	if options.Target == "" {
		result := validator.ValidateSchema(sourceSchema)
		cmd.Print(schema.PrintValidationResult(result))
		return nil
	}

	targetReader, _, err := openReader(options.Target, options.TargetType)
	if err != nil {
		return err
	}
	defer targetReader.Close()

	targetSchema := targetReader.Schema()
	if targetSchema == nil {
		return fmt.Errorf("failed to read schema from %s", options.Target)
	}

	cmd.Print(schema.CompareSchemas(sourceSchema, targetSchema))
	result := validator.ValidateAgainstTarget(sourceSchema, targetSchema)
	cmd.Print(schema.PrintValidationResult(result))
	return nil
}

// openReader creates a dataset reader for path, detecting the type from the
// file extension when typ is auto. The resolved type is returned alongside
// the reader.
func openReader(path, typ string) (core.DatasetReader, string, error) {
	if typ == "" || typ == "auto" {
		detected, err := readers.DetectType(path)
		if err != nil {
			return nil, "", err
		}
		typ = detected
	}

	reader, err := readers.DefaultFactory.Create(core.ReaderConfig{Path: path, Type: typ})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	return reader, typ, nil
}

// buildValidator picks the validator: an explicit rules file when given,
// otherwise the canonical rules for the table shape. csv and json carry no
// nullability metadata, so the nullability rule is skipped for them.
func buildValidator(s *arrow.Schema, sourceType string, options *SchemaOptions) (*schema.ArrowSchemaValidator, error) {
	if options.RulesFile != "" {
		validator, err := schema.NewValidatorFromSchemaFile(options.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		return applyLevel(validator, options.Level)
	}

	rules := schema.RulesForSchema(s)
	if sourceType == "csv" || sourceType == "json" {
		kept := rules[:0]
		for _, rule := range rules {
			if _, ok := rule.(*schema.NullabilityRule); !ok {
				kept = append(kept, rule)
			}
		}
		rules = kept
	}
	return applyLevel(schema.NewArrowSchemaValidator(rules...), options.Level)
}

func applyLevel(validator *schema.ArrowSchemaValidator, name string) (*schema.ArrowSchemaValidator, error) {
	if name == "" {
		return validator, nil
	}
	level, err := parseValidationLevel(name)
	if err != nil {
		return nil, err
	}
	validator.SetValidationLevel(level)
	return validator, nil
}

func parseValidationLevel(name string) (schema.ValidationLevel, error) {
	switch strings.ToLower(name) {
	case "strict":
		return schema.ValidationLevelStrict, nil
	case "compatible":
		return schema.ValidationLevelCompatible, nil
	case "relaxed":
		return schema.ValidationLevelRelaxed, nil
	default:
		return 0, fmt.Errorf("unknown validation level: %s (use strict, compatible or relaxed)", name)
	}
}
