package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// PipelineDefinition is the YAML form of a custom pipeline.
//
//	name: risk-review
//	stages:
//	  - id: risks
//	    role: Risk Analyst
//	    prompt: "List the delivery risks in: {{.Document}}"
//	    truncation_limit: 4000
//	  - id: memo
//	    prompt: "Summarise for the bid board: {{.Inputs.risks}}"
//	    requires: [risks]
type PipelineDefinition struct {
	Name   string            `yaml:"name"`
	Stages []StageDefinition `yaml:"stages"`
}

// StageDefinition is the YAML form of a single stage.
type StageDefinition struct {
	ID              string   `yaml:"id"`
	Role            string   `yaml:"role"`
	Goal            string   `yaml:"goal"`
	Backstory       string   `yaml:"backstory"`
	Prompt          string   `yaml:"prompt"`
	ExpectedOutput  string   `yaml:"expected_output"`
	Requires        []string `yaml:"requires"`
	TruncationLimit int      `yaml:"truncation_limit"`
}

// LoadPipeline reads a pipeline definition file. The pipeline name defaults
// to the file name without its extension. Stages are converted but not
// validated; building an orchestrator does that.
func LoadPipeline(path string) (string, []domain.Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read pipeline: %w", err)
	}

	def, err := ParsePipeline(data)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def.Name, def.ToStages(), nil
}

// ParsePipeline decodes a YAML definition. Unknown fields are rejected so
// that typos such as "require:" do not silently drop a dependency.
func ParsePipeline(data []byte) (*PipelineDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def PipelineDefinition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty pipeline definition", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(def.Stages) == 0 {
		return nil, fmt.Errorf("%w: pipeline defines no stages", domain.ErrInvalidInput)
	}
	return &def, nil
}

// ToStages converts the definition to domain stages, in file order.
func (d *PipelineDefinition) ToStages() []domain.Stage {
	stages := make([]domain.Stage, 0, len(d.Stages))
	for _, s := range d.Stages {
		requires := make([]domain.StageID, 0, len(s.Requires))
		for _, r := range s.Requires {
			requires = append(requires, domain.StageID(r))
		}
		stages = append(stages, domain.Stage{
			ID:              domain.StageID(s.ID),
			Role:            s.Role,
			Goal:            s.Goal,
			Backstory:       s.Backstory,
			PromptTemplate:  s.Prompt,
			ExpectedOutput:  s.ExpectedOutput,
			Requires:        requires,
			TruncationLimit: s.TruncationLimit,
		})
	}
	return stages
}
