// Package summary renders the human-readable grouping proposal.
package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"patientlink/internal/grouping"
)

const (
	lowConfidence = 0.5
	topReasons    = 5
)

// Summarize describes candidates produced under cfg, followed by the
// heuristic analysis text. Merged-away candidates are reported on their own
// line and left out of every other count.
func Summarize(candidates []*grouping.Candidate, cfg grouping.Config, analysisText string) string {
	var live []*grouping.Candidate
	merged := 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if !c.Live() {
			merged++
			continue
		}
		live = append(live, c)
	}

	lines := []string{
		"Proposed patient grouping structure:",
		"- Strategy: " + string(cfg.Strategy()),
		"- Excel config: " + compactJSON(cfg.Excel),
		"- Folder config: " + compactJSON(cfg.Folder),
		fmt.Sprintf("- Number of patient candidates: %d", len(live)),
	}
	if merged > 0 {
		lines = append(lines, fmt.Sprintf("- Merged candidates: %d", merged))
	}

	low, quarantined := 0, 0
	var reasons []string
	counts := make(map[string]int)
	for _, c := range live {
		if c.Confidence < lowConfidence {
			low++
		}
		if !c.Quarantined() {
			continue
		}
		quarantined++
		for _, issue := range c.Issues {
			if _, ok := counts[issue]; !ok {
				reasons = append(reasons, issue)
			}
			counts[issue]++
		}
	}
	lines = append(lines,
		fmt.Sprintf("- Low confidence candidates (<0.5): %d", low),
		fmt.Sprintf("- Quarantined candidates: %d", quarantined),
	)

	if len(reasons) > 0 {
		ranked := rankReasons(reasons, counts)
		lines = append(lines, "- Top quarantine reasons:")
		for _, reason := range ranked {
			lines = append(lines, fmt.Sprintf("  - %s (%d)", reason, counts[reason]))
		}
	}

	recap := strings.TrimSpace(analysisText)
	if recap == "" {
		recap = "(none)"
	} else {
		recap = analysisText
	}
	lines = append(lines, "", "Heuristic analysis recap:", recap)
	return strings.Join(lines, "\n")
}

// rankReasons orders reasons by descending count, keeping first-seen order
// for ties, and keeps the top five.
func rankReasons(reasons []string, counts map[string]int) []string {
	ranked := append([]string(nil), reasons...)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > topReasons {
		ranked = ranked[:topReasons]
	}
	return ranked
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
