package domain

import (
	"fmt"

	"dario.cat/mergo"
)

// MergeVariables overlays updates onto current in place. Writes from parallel
// siblings apply in completion order: the merge is last-writer-wins by design,
// a documented race the workflow author must avoid, not one the engine
// resolves.
func MergeVariables(current map[string]interface{}, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	if err := mergo.Merge(&current, updates, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge variables: %w", err)
	}

	return nil
}

// OverlayVariables returns a fresh map with updates merged over base, leaving
// both inputs untouched. Used to seed a run's variables from the definition's
// initial bindings plus the caller's overrides.
func OverlayVariables(base, updates map[string]interface{}) (map[string]interface{}, error) {
	merged := copyValues(base)
	if merged == nil {
		merged = make(map[string]interface{})
	}

	if err := MergeVariables(merged, updates); err != nil {
		return nil, err
	}

	return merged, nil
}
