package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteCheckpoint writes the result list to path atomically: a sibling
// temp file plus rename, so an interrupted batch never leaves a torn
// checkpoint behind.
func WriteCheckpoint(path string, results []*EvaluationResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// ReadCheckpoint loads a previously written checkpoint.
func ReadCheckpoint(path string) ([]*EvaluationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var results []*EvaluationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return results, nil
}
