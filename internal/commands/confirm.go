package commands

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/rivenmedia/riven-tui/internal/batch"
)

// confirmPlan prompts for interactive confirmation of a batch plan. Remove
// gets a sterner prompt since it is not reversible from this tool.
func confirmPlan(plan batch.Plan) (bool, error) {
	title := fmt.Sprintf("%s %d item(s)?", plan.Action, len(plan.Items))
	description := "Items are dispatched in throttled bursts. Ctrl-c stops at the next burst."
	if plan.Action.Destructive() {
		title = fmt.Sprintf("Permanently remove %d item(s) from the library?", len(plan.Items))
		description = "Removed items must be re-added and re-downloaded."
	}

	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
