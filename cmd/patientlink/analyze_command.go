package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patientlink/internal/ingest"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:         "analyze",
		Short:       "Describe spreadsheet columns and folder structure in an upload body",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := ingest.LoadBody(input)
			if err != nil {
				return err
			}
			text := ingest.Analyze(body)
			if ctx.outputMode(cmd) == outputJSON {
				return writeJSON(cmd, map[string]string{"analysis_text": text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Upload body JSON (excelFiles/files)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
