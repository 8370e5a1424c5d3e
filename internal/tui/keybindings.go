package tui

import (
	"sort"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/config"
)

// boundAction is a resolved keybinding: the batch action it triggers and
// the confirmation title configured for it.
type boundAction struct {
	action  batch.Action
	help    string
	confirm string
}

// resolveKeybindings maps configured key strings onto batch actions.
// Bindings naming an unknown action are dropped; config validation already
// warned about them.
func resolveKeybindings(bindings map[string]config.Keybinding) map[string]boundAction {
	resolved := make(map[string]boundAction, len(bindings))
	for key, binding := range bindings {
		action, err := batch.ParseAction(binding.Action)
		if err != nil {
			continue
		}
		resolved[key] = boundAction{
			action:  action,
			help:    binding.Help,
			confirm: binding.Confirm,
		}
	}
	return resolved
}

// sortedKeys returns the binding keys in a stable display order, so help
// lines do not shuffle between renders.
func sortedKeys(bindings map[string]boundAction) []string {
	keys := make([]string, 0, len(bindings))
	for key := range bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
