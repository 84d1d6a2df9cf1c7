package wizard

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed flows.yaml
var defaultFlows []byte

// StepKind names a wizard step and selects its predicate.
type StepKind string

const (
	StepReservation StepKind = "reservation"
	StepCustomer    StepKind = "customer"
	StepLogistics   StepKind = "logistics"
	StepPricing     StepKind = "pricing"
)

// DefaultFlow is used when a session does not name one.
const DefaultFlow = "full"

type Step struct {
	Key   StepKind `yaml:"key" json:"key"`
	Title string   `yaml:"title" json:"title"`
}

type Flow struct {
	Name  string `yaml:"-" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

type flowsDocument struct {
	Flows map[string]Flow `yaml:"flows"`
}

// Flows is the set of configured wizard flows keyed by name.
type Flows map[string]Flow

// Get returns the named flow.
func (f Flows) Get(name string) (Flow, bool) {
	flow, ok := f[name]
	return flow, ok
}

// LoadFlows parses the embedded flows, or the file at path when set.
func LoadFlows(path string) (Flows, error) {
	data := defaultFlows
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read wizard flows: %w", err)
		}
		data = raw
	}
	return ParseFlows(data)
}

// ParseFlows decodes and validates a flows document.
func ParseFlows(data []byte) (Flows, error) {
	var doc flowsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse wizard flows: %w", err)
	}
	if len(doc.Flows) == 0 {
		return nil, fmt.Errorf("wizard flows: no flows defined")
	}

	flows := make(Flows, len(doc.Flows))
	for name, flow := range doc.Flows {
		if err := validateFlow(name, flow); err != nil {
			return nil, err
		}
		flow.Name = name
		flows[name] = flow
	}
	return flows, nil
}

func validateFlow(name string, flow Flow) error {
	if len(flow.Steps) == 0 {
		return fmt.Errorf("wizard flow %q: no steps", name)
	}
	seen := make(map[StepKind]bool, len(flow.Steps))
	for _, step := range flow.Steps {
		switch step.Key {
		case StepReservation, StepCustomer, StepLogistics, StepPricing:
		default:
			return fmt.Errorf("wizard flow %q: unknown step %q", name, step.Key)
		}
		if seen[step.Key] {
			return fmt.Errorf("wizard flow %q: duplicate step %q", name, step.Key)
		}
		seen[step.Key] = true
	}
	if last := flow.Steps[len(flow.Steps)-1].Key; last != StepPricing {
		return fmt.Errorf("wizard flow %q: last step must be %q, got %q", name, StepPricing, last)
	}
	return nil
}
