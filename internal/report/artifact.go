package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
)

// Artifact is the persisted form of a run: the analysis with its score attached
type Artifact struct {
	bundlesize.Analysis `yaml:",inline"`
	Score               float64 `json:"score" yaml:"score"`
}

// WriteArtifact writes the analysis and score as indented JSON to path
func WriteArtifact(path string, a *bundlesize.Analysis, score float64) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(Artifact{Analysis: *a, Score: score}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	log.Debug().Str("path", path).Msg("Bundle analysis artifact written")
	return nil
}

// ReadArtifact loads an artifact written by WriteArtifact
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	return &artifact, nil
}
