package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wikiparity/wikiparity/internal/console"
	"github.com/wikiparity/wikiparity/pkg/schema"
	"github.com/wikiparity/wikiparity/utils"
)

// InspectOptions represents the options for the inspect command.
type InspectOptions struct {
	Type string
	Rows int64
}

// newInspectCommand creates the inspect command.
func newInspectCommand() *cobra.Command {
	options := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the schema and first rows of a dump file",
		Long: `Inspect opens a dump file (csv, json, arrow or parquet), prints its
schema and previews the first rows as a table.`,
		Example: `  wikiparity inspect wikidata_data/csv/combined.csv
  wikiparity inspect wikidata_data/parquet/data1.parquet --rows 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], options)
		},
	}

	cmd.Flags().StringVar(&options.Type, "type", "auto", "File type (auto, csv, json, arrow, parquet)")
	cmd.Flags().Int64VarP(&options.Rows, "rows", "n", 10, "Number of rows to preview")

	return cmd
}

// runInspect prints the schema and the head of the first record batch.
func runInspect(cmd *cobra.Command, path string, options *InspectOptions) error {
	ctx, cancel := signalContext()
	defer cancel()

	reader, _, err := openReader(path, options.Type)
	if err != nil {
		return err
	}
	defer reader.Close()

	record, err := reader.Read(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			cmd.Println("(empty file)")
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer record.Release()

	cmd.Println(schema.SchemaToString(record.Schema()))

	head := utils.Head(record, options.Rows)
	defer head.Release()

	console.New(cmd.OutOrStdout()).Preview(utils.ColumnNames(head), utils.RecordRows(head))
	if head.NumRows() < record.NumRows() {
		cmd.Printf("(first %d of %d rows in this batch)\n", head.NumRows(), record.NumRows())
	}
	return nil
}
