package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"truthlens/internal/usecase/analysis"
)

// analysisFile is the layout of the tuning file. Every key is optional;
// absent keys keep their defaults.
//
//	analysis:
//	  min_relevance: 0.3
//	  search_limit: 10
//	  scoring:
//	    count_steps: [5, 10, 15, 20, 25, 30, 33, 36, 38, 40]
//	    high_reliability: [reuters, bbc]
type analysisFile struct {
	Analysis analysis.Config `yaml:"analysis"`
}

// LoadAnalysisConfig returns the pipeline tuning. An empty path yields the
// defaults. The file is overlaid on the defaults and validated.
func LoadAnalysisConfig(path string) (analysis.Config, error) {
	defaults := analysis.DefaultConfig()
	if path == "" {
		return defaults, nil
	}

	// #nosec G304 -- path comes from ANALYSIS_CONFIG_FILE or a CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Config{}, fmt.Errorf("failed to read analysis config: %w", err)
	}

	file := analysisFile{Analysis: defaults}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return analysis.Config{}, fmt.Errorf("failed to parse analysis config: %w", err)
	}

	if err := file.Analysis.Validate(); err != nil {
		return analysis.Config{}, fmt.Errorf("analysis config validation failed: %w", err)
	}
	return file.Analysis, nil
}
