package correction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OpType names a correction operation.
type OpType string

const (
	OpMerge          OpType = "merge"
	OpReassign       OpType = "reassign"
	OpChangeStrategy OpType = "change_strategy"
)

// Operation is one reviewer instruction.
type Operation struct {
	Op     OpType `json:"op" yaml:"op"`
	Params Params `json:"params" yaml:"params"`
}

// Params carries the arguments of every operation type; each operation reads
// only its own fields.
type Params struct {
	From         []string `json:"from,omitempty" yaml:"from,omitempty"`
	Into         string   `json:"into,omitempty" yaml:"into,omitempty"`
	RawItemID    string   `json:"raw_item_id,omitempty" yaml:"raw_item_id,omitempty"`
	NewCandidate string   `json:"new_candidate,omitempty" yaml:"new_candidate,omitempty"`
	UnitStrategy string   `json:"unit_strategy,omitempty" yaml:"unit_strategy,omitempty"`
}

// Merge builds a merge operation.
func Merge(into string, from ...string) Operation {
	return Operation{Op: OpMerge, Params: Params{From: from, Into: into}}
}

// Reassign builds a reassign operation.
func Reassign(rawItemID, newCandidate string) Operation {
	return Operation{Op: OpReassign, Params: Params{RawItemID: rawItemID, NewCandidate: newCandidate}}
}

// ChangeStrategy builds a change_strategy operation.
func ChangeStrategy(strategy string) Operation {
	return Operation{Op: OpChangeStrategy, Params: Params{UnitStrategy: strategy}}
}

// Batch is an operations file: the operations plus the free-text instruction
// they came from.
type Batch struct {
	Operations      []Operation `json:"operations" yaml:"operations"`
	UserInstruction string      `json:"user_instruction,omitempty" yaml:"user_instruction,omitempty"`
}

// LoadOperationsFile reads a batch from JSON or YAML. The file may hold either
// a Batch object or a bare list of operations.
func LoadOperationsFile(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read operations: %w", err)
	}
	batch, err := ParseOperations(data, filepath.Ext(path))
	if err != nil {
		return Batch{}, fmt.Errorf("operations %s: %w", path, err)
	}
	return batch, nil
}

// ParseOperations decodes data as YAML when ext is .yaml or .yml, JSON
// otherwise.
func ParseOperations(data []byte, ext string) (Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Batch{}, nil
	}

	ext = strings.ToLower(ext)
	if ext == ".yaml" || ext == ".yml" {
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return Batch{}, fmt.Errorf("decode yaml: %w", err)
		}
		root := &node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		var batch Batch
		if root.Kind == yaml.SequenceNode {
			if err := root.Decode(&batch.Operations); err != nil {
				return Batch{}, fmt.Errorf("decode yaml: %w", err)
			}
			return batch, nil
		}
		if err := root.Decode(&batch); err != nil {
			return Batch{}, fmt.Errorf("decode yaml: %w", err)
		}
		return batch, nil
	}

	var batch Batch
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &batch.Operations); err != nil {
			return Batch{}, fmt.Errorf("decode json: %w", err)
		}
		return batch, nil
	}
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		return Batch{}, fmt.Errorf("decode json: %w", err)
	}
	return batch, nil
}
