// Package testutil provides shared test helpers for the conformance suite.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario is one program plus the outcome the CLI must produce for it.
type Scenario struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description,omitempty"`
	Cmd         string   `yaml:"cmd"`
	Pretty      bool     `yaml:"pretty,omitempty"`
	Source      string   `yaml:"source"`
	Config      string   `yaml:"config,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Expect      Expected `yaml:"expect"`
}

// Expected describes the expected outcome of running a scenario.
type Expected struct {
	ExitCode         int              `yaml:"exit_code"`
	Stdout           *string          `yaml:"stdout,omitempty"`
	StdoutContains   string           `yaml:"stdout_contains,omitempty"`
	StderrContains   string           `yaml:"stderr_contains,omitempty"`
	StderrJSONSubset []map[string]any `yaml:"stderr_json_subset,omitempty"`
}

// LoadScenario reads a scenario file. The scenario is named after the file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if s.Cmd == "" {
		s.Cmd = "run"
	}
	if s.Cmd != "run" && s.Cmd != "check" {
		return nil, fmt.Errorf("scenario %s: unsupported cmd %q", path, s.Cmd)
	}
	return &s, nil
}

// ListScenarios returns the scenario files under root in sorted order.
func ListScenarios(root string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(root, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// IsSubset reports whether every key and element of expected is present
// and equal in actual. Numbers compare by value, so YAML integers match
// JSON float64s.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case int:
		return IsSubset(float64(e), actual)

	case float64:
		af, ok := actual.(float64)
		return ok && e == af

	case string:
		as, ok := actual.(string)
		return ok && e == as

	case bool:
		ab, ok := actual.(bool)
		return ok && e == ab

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}
