package grouping

import (
	"fmt"
	"strings"

	"patientlink/internal/filematch"
	"patientlink/internal/identity"
	"patientlink/internal/rawitem"
)

const unknownWorkbook = "unknown_excel"

// groupRows implements the excel_row strategy. Rows are keyed by source file
// and patient key so identical ids in different workbooks stay apart. Files
// are attached afterwards; items of any other source type become singles.
func (r *groupRun) groupRows(items []rawitem.Item, idColumn string) {
	groups := make(map[string]*Candidate)
	var files, other []rawitem.Item

	for _, item := range items {
		switch item.SourceType {
		case rawitem.SourceExcelRow:
			r.addRow(groups, item, idColumn)
		case rawitem.SourceFile:
			files = append(files, item)
		default:
			other = append(other, item)
		}
	}

	for _, file := range files {
		r.attachFile(file)
	}
	r.addIneligible(other, StrategyExcelRow)
}

func (r *groupRun) addRow(groups map[string]*Candidate, item rawitem.Item, idColumn string) {
	file := item.Metadata.File
	if file == "" {
		file = unknownWorkbook
	}
	row := item.Metadata.Columns

	ids := r.extractor.Identifiers(row)
	if idColumn != "" && strings.TrimSpace(ids.PatientID) == "" {
		if v, ok := row.Get(idColumn); ok && strings.TrimSpace(v) != "" {
			ids.PatientID = v
		}
	}

	normalized := identity.Normalize(ids)
	key := identity.DerivePatientKey(normalized)
	groupKey := file + "::" + key.Key

	c, ok := groups[groupKey]
	if !ok {
		c = newCandidate("excel::"+groupKey, "Excel patient group in "+file, r.policy.RowGroupConfidence)
		c.InferredIdentifiers = ids
		c.NormalizedIdentifiers = normalized
		c.PatientKey = key.Key
		c.MatchKeyType = key.Type
		c.AddItems(item)
		groups[groupKey] = c
		r.add(c)
		return
	}

	c.AddItems(item)
	c.SetIdentifiers(c.InferredIdentifiers.Backfill(ids))
	c.Confidence = min(r.policy.RowGroupConfidenceCap, c.Confidence+r.policy.RowCorroborationStep)
}

// attachFile scores every candidate built so far against the filename and
// attaches the file to the first highest scorer that clears the minimum.
func (r *groupRun) attachFile(file rawitem.Item) {
	filename := file.Metadata.Filename

	var best *Candidate
	bestScore := 0
	for _, c := range r.candidates {
		score := 0
		if pid := c.NormalizedIdentifiers.PatientID; pid != "" && filematch.ContainsIdentifier(filename, pid) {
			score += r.policy.FileIDMatchScore
		}
		if name := c.InferredIdentifiers.Name; name != "" && filematch.MatchesName(filename, name) {
			score += r.policy.FileNameMatchScore
		}
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	if best != nil && bestScore >= r.policy.FileAttachMinScore {
		best.AddItems(file)
		best.Confidence = min(r.policy.FileAttachCap, best.Confidence+r.policy.FileAttachStep)
		r.decision(best, "file_attach", "attached", fmt.Sprintf("%s scored %d", file.ID, bestScore))
		return
	}

	label := filename
	if label == "" {
		label = file.ID
	}
	c := newCandidate("file_only_"+file.ID, "Unassigned file "+label, r.policy.UnassignedConfidence)
	c.AddItems(file)
	c.quarantine("Unassigned file; no confident patient match.")
	r.add(c)
	r.decision(c, "file_attach", "unassigned", fmt.Sprintf("best score %d below %d", bestScore, r.policy.FileAttachMinScore))
}
