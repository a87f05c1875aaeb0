package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"patientlink/internal/extract"
)

const (
	maxFolderLines  = 20
	noStructureText = "No strong structure detected."
)

// ColumnStats summarizes how identifier-like a spreadsheet column is.
type ColumnStats struct {
	Name       string
	IDLikeness int
	Uniqueness float64
	NullRatio  float64
}

func isNullLike(v string) bool {
	return v == "" || v == "null" || v == "None"
}

// RankColumns orders the columns of the first row by id-likeness, then
// uniqueness, then ascending null ratio. Ties keep column order.
func RankColumns(ef ExcelFile) []ColumnStats {
	if len(ef.Rows) == 0 {
		return nil
	}
	names := ef.Rows[0].Names()
	stats := make([]ColumnStats, 0, len(names))
	for _, name := range names {
		nonNull := 0
		distinct := make(map[string]struct{})
		for _, row := range ef.Rows {
			v, _ := row.Get(name)
			if isNullLike(v) {
				continue
			}
			nonNull++
			distinct[v] = struct{}{}
		}
		s := ColumnStats{Name: name, IDLikeness: extract.ScoreColumn(name)}
		if nonNull > 0 {
			s.Uniqueness = float64(len(distinct)) / float64(nonNull)
		}
		s.NullRatio = 1 - float64(nonNull)/float64(len(ef.Rows))
		stats = append(stats, s)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.IDLikeness != b.IDLikeness {
			return a.IDLikeness > b.IDLikeness
		}
		if a.Uniqueness != b.Uniqueness {
			return a.Uniqueness > b.Uniqueness
		}
		return a.NullRatio < b.NullRatio
	})
	return stats
}

// Analyze describes the structure of body: spreadsheet sizes, columns and the
// most identifier-like column, then the folder layout of the files.
func Analyze(body Body) string {
	var lines []string

	for i, ef := range body.ExcelFiles {
		name := workbookName(ef, i)
		lines = append(lines, fmt.Sprintf("Excel file '%s' with %d rows.", name, len(ef.Rows)))
		if len(ef.Rows) == 0 {
			continue
		}
		cols, _ := json.Marshal(ef.Rows[0].Names())
		lines = append(lines, "Columns: "+string(cols))
		if ranked := RankColumns(ef); len(ranked) > 0 {
			best := ranked[0]
			lines = append(lines, fmt.Sprintf(
				"Best ID-like column candidate: '%s' (id_likeness=%d, uniqueness=%.2f, null_ratio=%.2f).",
				best.Name, best.IDLikeness, best.Uniqueness, best.NullRatio))
		}
	}

	var folders []string
	counts := make(map[string]int)
	for _, f := range body.Files {
		location := f.Location()
		if !strings.Contains(location, "/") {
			continue
		}
		folder := parentFolder(location)
		if _, ok := counts[folder]; !ok {
			folders = append(folders, folder)
		}
		counts[folder]++
	}
	if len(folders) > 0 {
		lines = append(lines, "Folder structure:")
		for i, folder := range folders {
			if i == maxFolderLines {
				break
			}
			lines = append(lines, fmt.Sprintf(" - Folder '%s' has %d files.", folder, counts[folder]))
		}
	}

	if len(lines) == 0 {
		return noStructureText
	}
	return strings.Join(lines, "\n")
}
