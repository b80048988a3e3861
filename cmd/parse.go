package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rzimmerman2022/healthplan-navigator/internal/docext"
	"github.com/rzimmerman2022/healthplan-navigator/internal/ingest"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

var parseCmd = &cobra.Command{
	Use:   "parse [path]",
	Short: "Parse plan documents and show what was extracted",
	Long: `Parse a single plan document or every document in a directory and print
the extracted fields, including how many were recovered from the source.
Useful for checking document quality before running an analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "parse: stat %s", path)
	}

	parser := ingest.NewParser(
		docext.NewPdfToText(cfg.Documents.PdfToTextPath),
		docext.NewDocxReader(),
	)

	var plans []model.Plan
	if info.IsDir() {
		plans, err = parser.ParseBatch(ctx, path)
		if err != nil {
			return eris.Wrapf(err, "parse: batch %s", path)
		}
	} else {
		plan, err := parser.ParseDocument(ctx, path)
		if err != nil {
			return eris.Wrapf(err, "parse: %s", path)
		}
		plans = []model.Plan{*plan}
	}

	if len(plans) == 0 {
		fmt.Println("No parsable plan documents found.")
		return nil
	}

	for i, p := range plans {
		if i > 0 {
			fmt.Println()
		}
		if err := printPlan(p); err != nil {
			return err
		}
	}
	fmt.Printf("\nParsed %d plan(s).\n", len(plans))
	return nil
}

func printPlan(p model.Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "parse: marshal plan %s", p.PlanID)
	}
	fmt.Println(string(data))
	fmt.Printf("fields recovered: %d/10 (%s)\n", p.FieldsRecovered, p.SourceFile)
	return nil
}
