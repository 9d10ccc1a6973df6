// Package config provides configuration loading for project seed files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile describes a project board to bootstrap: its state catalog,
// workflows and task types. States are referenced by name inside the file;
// ids are assigned when the seed is applied.
type SeedFile struct {
	ProjectID string         `yaml:"project_id"`
	States    []StateSeed    `yaml:"states"`
	Workflows []WorkflowSeed `yaml:"workflows"`
	TaskTypes []TaskTypeSeed `yaml:"task_types"`
}

// StateSeed is one catalog state. Position zero means "append".
type StateSeed struct {
	Name     string `yaml:"name"`
	Position int    `yaml:"position"`
}

// WorkflowSeed is a workflow graph expressed over state names.
type WorkflowSeed struct {
	Name        string           `yaml:"name"`
	Steps       []StepSeed       `yaml:"steps"`
	Transitions []TransitionSeed `yaml:"transitions"`
}

// StepSeed is a workflow member; Order zero means "position in the list".
type StepSeed struct {
	State string `yaml:"state"`
	Order int    `yaml:"order"`
}

// TransitionSeed is an edge by state name. A nil From is the wildcard source.
type TransitionSeed struct {
	From *string `yaml:"from"`
	To   string  `yaml:"to"`
}

// TaskTypeSeed binds a task type to a workflow by name. Workflow may be
// empty for an unbound type.
type TaskTypeSeed struct {
	Name     string `yaml:"name"`
	Workflow string `yaml:"workflow"`
}

// LoadSeed loads and structurally checks a project seed from a YAML file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile

	err = yaml.Unmarshal(data, &seed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	err = seed.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return &seed, nil
}

func (s *SeedFile) validate() error {
	if s.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}

	names := make(map[string]struct{}, len(s.States))

	for _, state := range s.States {
		if state.Name == "" {
			return fmt.Errorf("state without a name")
		}

		if _, dup := names[state.Name]; dup {
			return fmt.Errorf("duplicate state name %q", state.Name)
		}

		names[state.Name] = struct{}{}
	}

	workflows := make(map[string]struct{}, len(s.Workflows))

	for _, workflow := range s.Workflows {
		if workflow.Name == "" {
			return fmt.Errorf("workflow without a name")
		}

		if _, dup := workflows[workflow.Name]; dup {
			return fmt.Errorf("duplicate workflow name %q", workflow.Name)
		}

		workflows[workflow.Name] = struct{}{}

		for _, step := range workflow.Steps {
			if _, ok := names[step.State]; !ok {
				return fmt.Errorf("workflow %q step references unknown state %q", workflow.Name, step.State)
			}
		}

		for _, transition := range workflow.Transitions {
			if transition.From != nil {
				if _, ok := names[*transition.From]; !ok {
					return fmt.Errorf("workflow %q transition from unknown state %q", workflow.Name, *transition.From)
				}
			}

			if _, ok := names[transition.To]; !ok {
				return fmt.Errorf("workflow %q transition to unknown state %q", workflow.Name, transition.To)
			}
		}
	}

	for _, taskType := range s.TaskTypes {
		if taskType.Name == "" {
			return fmt.Errorf("task type without a name")
		}

		if taskType.Workflow != "" {
			if _, ok := workflows[taskType.Workflow]; !ok {
				return fmt.Errorf("task type %q references unknown workflow %q", taskType.Name, taskType.Workflow)
			}
		}
	}

	return nil
}
