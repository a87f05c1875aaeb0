package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"patientlink/internal/archive"
	"patientlink/internal/grouping"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderCandidates(candidates []*grouping.Candidate) string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		rows = append(rows, []string{
			c.ID,
			c.InferredKey,
			strconv.Itoa(len(c.RawItems)),
			fmt.Sprintf("%.2f", c.Confidence),
			candidateStatus(c),
			strings.Join(c.Issues, "; "),
		})
	}
	return renderTable(
		[]string{"Candidate", "Label", "Items", "Confidence", "Status", "Issues"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func candidateStatus(c *grouping.Candidate) string {
	if !c.Live() {
		return "merged into " + c.MergedInto
	}
	return string(c.Status)
}

func renderRuns(runs []archive.RunSummary) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.CreatedAt,
			run.Strategy,
			strconv.Itoa(run.RawItemCount),
			strconv.Itoa(run.CandidateCount),
			strconv.Itoa(run.QuarantinedCount),
			strconv.Itoa(run.Revision),
		})
	}
	return renderTable(
		[]string{"Run", "Created", "Strategy", "Items", "Candidates", "Quarantined", "Rev"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}
