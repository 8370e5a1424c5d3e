package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/library"
	"github.com/rivenmedia/riven-tui/internal/metadata/mdblist"
	"github.com/rivenmedia/riven-tui/pkg/tuitest"
)

func testBindings() map[string]boundAction {
	return map[string]boundAction{
		"r": {action: batch.ActionRetry, help: "retry", confirm: "Retry the selected items?"},
		"x": {action: batch.ActionRemove, help: "remove", confirm: "Remove the selected items?"},
	}
}

func testReport() library.MatchReport {
	return library.MatchReport{
		ListRef:  "user/crime",
		ListSize: 3,
		Matched: []batch.TargetItem{
			{ID: "1", Label: "Heat (1995)", Kind: "movie"},
			{ID: "2", Label: "Ronin (1998)", Kind: "movie"},
		},
		Unmatched: []mdblist.ListItem{
			{ID: 603, Title: "Thief", MediaType: "movie", ReleaseYear: 1981},
		},
	}
}

func TestMassOpsView_EnterRequestsScan(t *testing.T) {
	v := newMassOpsView()
	v.input.SetValue("  user/crime  ")

	ref, plan, _, _ := v.update(tuitest.KeyEnter(), testBindings())

	assert.Equal(t, "user/crime", ref)
	assert.Nil(t, plan)
	assert.Equal(t, massOpsScanning, v.phase)
}

func TestMassOpsView_EnterIgnoresEmptyInput(t *testing.T) {
	v := newMassOpsView()

	ref, _, _, _ := v.update(tuitest.KeyEnter(), testBindings())

	assert.Empty(t, ref)
	assert.Equal(t, massOpsInput, v.phase)
}

func TestMassOpsView_ActionKeyProposesMatchedPlan(t *testing.T) {
	v := newMassOpsView()
	v.setReport(testReport())

	_, plan, title, _ := v.update(tuitest.KeyPress('r'), testBindings())

	require.NotNil(t, plan)
	assert.Equal(t, batch.ActionRetry, plan.Action)
	assert.Len(t, plan.Items, 2)
	assert.Equal(t, "Retry the selected items?", title)
	// Proposing does not run anything; the root model owns confirmation.
	assert.Equal(t, massOpsReport, v.phase)
}

func TestMassOpsView_AddKeyProposesUnmatchedPlan(t *testing.T) {
	v := newMassOpsView()
	v.setReport(testReport())

	_, plan, title, _ := v.update(tuitest.KeyPress('a'), testBindings())

	require.NotNil(t, plan)
	assert.Equal(t, batch.ActionAdd, plan.Action)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "603", plan.Items[0].ID)
	assert.Contains(t, title, "Add 1 missing item(s)")
}

func TestMassOpsView_RunningPhaseCollectsOutcomes(t *testing.T) {
	v := newMassOpsView()
	plan := batch.Plan{
		Action: batch.ActionRetry,
		Items: []batch.TargetItem{
			{ID: "1", Label: "Heat (1995)"},
			{ID: "2", Label: "Ronin (1998)"},
		},
	}
	v.begin(plan)
	require.Equal(t, massOpsRunning, v.phase)
	assert.Equal(t, 2, v.counts.Total)

	v.addOutcome(
		batch.Outcome{Item: plan.Items[0], Status: batch.StatusSucceeded},
		batch.Counts{Total: 2, Done: 1, Succeeded: 1},
	)
	v.addOutcome(
		batch.Outcome{Item: plan.Items[1], Status: batch.StatusFailed, Reason: "status 500"},
		batch.Counts{Total: 2, Done: 2, Succeeded: 1, Failed: 1},
	)
	assert.Len(t, v.lines, 2)
	assert.Equal(t, 2, v.counts.Done)

	v.finish(batch.Summary{Counts: v.counts})
	assert.Equal(t, massOpsDone, v.phase)
}

func TestMassOpsView_EscAfterDoneResets(t *testing.T) {
	v := newMassOpsView()
	v.setReport(testReport())
	v.begin(batch.Plan{Action: batch.ActionRetry, Items: []batch.TargetItem{{ID: "1", Label: "Heat"}}})
	v.finish(batch.Summary{})

	v.update(tuitest.KeyEsc(), testBindings())

	assert.Equal(t, massOpsInput, v.phase)
	assert.Empty(t, v.report.ListRef)
}

func TestMassOpsView_ReportActionHelpIsStableOrder(t *testing.T) {
	v := newMassOpsView()
	v.setReport(testReport())
	bindings := map[string]boundAction{
		"x": {action: batch.ActionRemove, help: "remove"},
		"p": {action: batch.ActionPause, help: "pause"},
		"r": {action: batch.ActionRetry, help: "retry"},
	}

	first := tuitest.StripANSI(v.view(bindings))
	assert.Less(t, strings.Index(first, "p: pause"), strings.Index(first, "r: retry"))
	assert.Less(t, strings.Index(first, "r: retry"), strings.Index(first, "x: remove"))

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, tuitest.StripANSI(v.view(bindings)))
	}
}

func TestSortedKeys(t *testing.T) {
	bindings := map[string]boundAction{
		"x": {}, "R": {}, "p": {}, "P": {}, "r": {},
	}
	assert.Equal(t, []string{"P", "R", "p", "r", "x"}, sortedKeys(bindings))
}

func TestMassOpsView_ReportViewListsUnmatched(t *testing.T) {
	v := newMassOpsView()
	v.setReport(testReport())

	out := tuitest.StripANSI(v.view(testBindings()))

	assert.Contains(t, out, "user/crime")
	assert.Contains(t, out, "Thief (1981)")
	assert.Contains(t, out, "a: add missing")
}
