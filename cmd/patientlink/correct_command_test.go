package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"patientlink/internal/grouping"
	"patientlink/internal/testsupport"
)

type correctJSON struct {
	Candidates        []grouping.Candidate `json:"patient_candidates"`
	OperationsApplied []struct {
		Op string `json:"op"`
	} `json:"operations_applied"`
	UserInstruction string `json:"user_instruction"`
	Correction      *struct {
		RunID    string `json:"run_id"`
		Revision int    `json:"revision"`
	} `json:"correction"`
}

func groupAndArchive(t *testing.T, env *cliTestEnv) groupJSON {
	t.Helper()
	out, _, err := runCLI(t, []string{"group", "--input", env.bodyPath, "--archive", "--output", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("group --archive: %v", err)
	}
	var res groupJSON
	decodeOutput(t, out, &res)
	if res.Run == nil || res.Run.ID == "" {
		t.Fatalf("expected archived run in output: %s", out)
	}
	return res
}

func TestCorrectArchivedRun(t *testing.T) {
	env := setupCLITestEnv(t)
	res := groupAndArchive(t, env)

	into := res.Candidates[0].ID
	from := res.Candidates[1].ID
	opsPath := filepath.Join(env.baseDir, "ops.yaml")
	ops := fmt.Sprintf(`user_instruction: same patient
operations:
  - op: merge
    params:
      into: %q
      from: [%q]
  - op: reassign
    params:
      raw_item_id: file_1
      new_candidate: %q
`, into, from, into)
	testsupport.WriteFile(t, opsPath, []byte(ops))

	out, _, err := runCLI(t, []string{"correct", "--run", res.Run.ID, "--ops", opsPath, "--output", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}

	var corrected correctJSON
	decodeOutput(t, out, &corrected)
	if corrected.Correction == nil || corrected.Correction.Revision != 1 || corrected.Correction.RunID != res.Run.ID {
		t.Fatalf("unexpected correction record: %+v", corrected.Correction)
	}
	if corrected.UserInstruction != "same patient" {
		t.Fatalf("instruction = %q", corrected.UserInstruction)
	}
	if len(corrected.OperationsApplied) != 2 {
		t.Fatalf("operations applied = %d, want 2", len(corrected.OperationsApplied))
	}

	target := corrected.Candidates[0]
	var moved bool
	for _, item := range target.RawItems {
		if item.ID == "file_1" {
			moved = true
			if item.Metadata.Filename != "readme.txt" {
				t.Fatalf("reassigned item should keep archived metadata, got %+v", item.Metadata)
			}
		}
	}
	if !moved {
		t.Fatalf("file_1 not reassigned to %s", into)
	}
	if merged := corrected.Candidates[1]; merged.MergedInto != into || merged.Confidence != 0 {
		t.Fatalf("unexpected merged candidate %+v", merged)
	}

	out, _, err = runCLI(t, []string{"runs", "show", res.Run.ID, "--output", "table"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Revision:    1")
	requireContains(t, out, "merged into "+into)
	requireContains(t, out, "rev 1")
	requireContains(t, out, "same patient")
}

func TestCorrectCandidatesFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"group", "--input", env.bodyPath, "--output", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	var grouped groupJSON
	decodeOutput(t, out, &grouped)
	target := grouped.Candidates[1].ID
	resultPath := filepath.Join(env.baseDir, "result.json")
	testsupport.WriteFile(t, resultPath, []byte(out))

	opsPath := filepath.Join(env.baseDir, "ops.json")
	testsupport.WriteJSON(t, opsPath, []map[string]any{
		{"op": "reassign", "params": map[string]any{"raw_item_id": "file_1", "new_candidate": target}},
		{"op": "change_strategy", "params": map[string]any{"unit_strategy": "subfolder"}},
	})

	out, _, err = runCLI(t, []string{
		"correct", "--candidates", resultPath, "--ops", opsPath,
		"--instruction", "move readme", "--output", "json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}

	var corrected correctJSON
	decodeOutput(t, out, &corrected)
	if corrected.Correction != nil {
		t.Fatalf("file-based correction should not be archived")
	}
	if corrected.UserInstruction != "move readme" {
		t.Fatalf("instruction = %q", corrected.UserInstruction)
	}
	got := corrected.Candidates[1]
	if got.ID != target || len(got.RawItems) != 2 {
		t.Fatalf("unexpected target candidate %+v", got)
	}
	if moved := got.RawItems[1]; moved.ID != "file_1" || moved.Metadata.Filename != "readme.txt" {
		t.Fatalf("reassigned item should keep metadata from raw_items, got %+v", moved)
	}
	if emptied := corrected.Candidates[2]; len(emptied.RawItems) != 0 {
		t.Fatalf("source candidate should be emptied, got %+v", emptied.RawItems)
	}
	if n := len(got.Notes); n == 0 {
		t.Fatalf("expected change_strategy note on candidates")
	}
}

func TestCorrectUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	opsPath := filepath.Join(env.baseDir, "ops.json")
	testsupport.WriteJSON(t, opsPath, []any{})

	_, _, err := runCLI(t, []string{"correct", "--run", "missing", "--ops", opsPath}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
	requireContains(t, err.Error(), "run not found")
}
