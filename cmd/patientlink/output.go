package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type outputMode string

const (
	outputAuto  outputMode = "auto"
	outputTable outputMode = "table"
	outputJSON  outputMode = "json"
)

func parseOutputMode(value string) (outputMode, error) {
	switch mode := outputMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", outputAuto:
		return outputAuto, nil
	case outputTable, outputJSON:
		return mode, nil
	default:
		return outputAuto, fmt.Errorf("output: unsupported value %q (use auto, table, or json)", value)
	}
}

// resolveOutputMode turns auto into table on a terminal and json otherwise.
func resolveOutputMode(mode outputMode, writer io.Writer) outputMode {
	if mode != outputAuto {
		return mode
	}
	if isTerminal(writer) {
		return outputTable
	}
	return outputJSON
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
