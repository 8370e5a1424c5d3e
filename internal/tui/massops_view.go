package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/library"
)

type massOpsPhase int

const (
	massOpsInput massOpsPhase = iota
	massOpsScanning
	massOpsReport
	massOpsRunning
	massOpsDone
)

// massOpsView drives list-based bulk operations: scan an MDBList, review
// the match report, pick an action, and watch the batch run with live
// per-item outcomes.
type massOpsView struct {
	phase    massOpsPhase
	input    textinput.Model
	ref      string
	report   library.MatchReport
	progress progress.Model
	outcomes viewport.Model
	lines    []string
	counts   batch.Counts
	summary  batch.Summary
	width    int
}

func newMassOpsView() massOpsView {
	input := textinput.New()
	input.Placeholder = "mdblist url or user/slug"
	input.Prompt = styles.IconList + " "
	input.CharLimit = 200
	input.Focus()

	return massOpsView{
		input:    input,
		progress: progress.New(progress.WithDefaultGradient()),
		outcomes: viewport.New(80, 12),
	}
}

func (v *massOpsView) setSize(width, height int) {
	v.width = width
	v.input.Width = max(width-4, 20)
	v.progress.Width = max(width-10, 20)
	v.outcomes.Width = width
	v.outcomes.Height = max(height-8, 4)
}

func (v *massOpsView) setReport(report library.MatchReport) {
	v.report = report
	v.phase = massOpsReport
}

func (v *massOpsView) scanFailed() {
	v.phase = massOpsInput
	v.input.Focus()
}

// begin switches to the running phase for a confirmed plan.
func (v *massOpsView) begin(plan batch.Plan) {
	v.phase = massOpsRunning
	v.lines = v.lines[:0]
	v.counts = batch.Counts{Total: len(plan.Items)}
	v.outcomes.SetContent("")
}

func (v *massOpsView) addOutcome(outcome batch.Outcome, counts batch.Counts) {
	v.counts = counts

	var line string
	switch outcome.Status {
	case batch.StatusSucceeded:
		line = styles.OutcomeSucceededStyle.Render(styles.IconOK + " " + outcome.Item.Label)
	case batch.StatusFailed:
		line = styles.OutcomeFailedStyle.Render(styles.IconFail+" "+outcome.Item.Label) +
			styles.TextMutedStyle.Render("  "+outcome.Reason)
	default:
		line = styles.OutcomeSkippedStyle.Render(styles.IconSkip + " " + outcome.Item.Label)
	}
	v.lines = append(v.lines, line)
	v.outcomes.SetContent(strings.Join(v.lines, "\n"))
	v.outcomes.GotoBottom()
}

func (v *massOpsView) finish(summary batch.Summary) {
	v.summary = summary
	v.phase = massOpsDone
}

func (v *massOpsView) batchFailed() {
	v.phase = massOpsReport
}

func (v *massOpsView) reset() {
	v.phase = massOpsInput
	v.report = library.MatchReport{}
	v.input.SetValue("")
	v.input.Focus()
}

// update handles phase-local input. It reports a scan request or a proposed
// plan; the root model owns confirmation and execution.
func (v *massOpsView) update(msg tea.Msg, bindings map[string]boundAction) (scanRef string, plan *batch.Plan, confirmTitle string, cmd tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	switch v.phase {
	case massOpsInput:
		if isKey && keyMsg.String() == "enter" {
			ref := strings.TrimSpace(v.input.Value())
			if ref != "" {
				v.phase = massOpsScanning
				v.ref = ref
				return ref, nil, "", nil
			}
			return "", nil, "", nil
		}
		v.input, cmd = v.input.Update(msg)
		return "", nil, "", cmd

	case massOpsReport:
		if !isKey {
			return "", nil, "", nil
		}
		key := keyMsg.String()
		if key == "esc" {
			v.reset()
			return "", nil, "", nil
		}
		if key == "a" && v.report.UnmatchedCount() > 0 {
			addPlan, unaddable := v.report.AddPlan()
			if len(addPlan.Items) == 0 {
				return "", nil, "", nil
			}
			title := fmt.Sprintf("Add %d missing item(s) to the library?", len(addPlan.Items))
			if len(unaddable) > 0 {
				title += fmt.Sprintf(" (%d have no usable id)", len(unaddable))
			}
			return "", &addPlan, title, nil
		}
		if bound, ok := bindings[key]; ok && v.report.MatchedCount() > 0 {
			matched := v.report.MatchedPlan(bound.action)
			return "", &matched, bound.confirm, nil
		}
		return "", nil, "", nil

	case massOpsRunning, massOpsDone:
		if isKey && keyMsg.String() == "esc" && v.phase == massOpsDone {
			v.reset()
			return "", nil, "", nil
		}
		v.outcomes, cmd = v.outcomes.Update(msg)
		return "", nil, "", cmd
	}

	return "", nil, "", nil
}

func (v *massOpsView) view(bindings map[string]boundAction) string {
	switch v.phase {
	case massOpsInput:
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Mass Operations"),
			"",
			v.input.View(),
			styles.HelpStyle.Render("enter: scan list against the library"),
		)

	case massOpsScanning:
		return styles.TextMutedStyle.Render("scanning " + v.ref + "…")

	case massOpsReport:
		var b strings.Builder
		b.WriteString(styles.TitleStyle.Render("Scan: "+v.report.ListRef) + "\n\n")
		b.WriteString(v.report.Summary() + "\n\n")

		if v.report.UnmatchedCount() > 0 {
			b.WriteString(styles.TextMutedStyle.Render("not in library:") + "\n")
			for _, entry := range v.report.Unmatched {
				b.WriteString("  " + entry.Label() + "\n")
			}
			b.WriteString("\n")
		}

		var actions []string
		for _, key := range sortedKeys(bindings) {
			actions = append(actions, key+": "+bindings[key].help)
		}
		help := strings.Join(actions, " · ")
		if v.report.UnmatchedCount() > 0 {
			help += " · a: add missing"
		}
		b.WriteString(styles.HelpStyle.Render(help + " · esc: new scan"))
		return b.String()

	case massOpsRunning, massOpsDone:
		pct := 0.0
		if v.counts.Total > 0 {
			pct = float64(v.counts.Done) / float64(v.counts.Total)
		}
		statusLine := fmt.Sprintf("%d/%d · %s %d · %s %d · %s %d",
			v.counts.Done, v.counts.Total,
			styles.IconOK, v.counts.Succeeded,
			styles.IconFail, v.counts.Failed,
			styles.IconSkip, v.counts.Skipped)

		var footer string
		if v.phase == massOpsRunning {
			footer = styles.HelpStyle.Render("c: cancel at next burst")
		} else {
			verdict := "batch complete"
			if v.summary.Cancelled {
				verdict = "batch cancelled"
			}
			footer = styles.TextPrimaryBoldStyle.Render(verdict) +
				styles.HelpStyle.Render("  esc: new scan")
		}

		return lipgloss.JoinVertical(lipgloss.Left,
			v.progress.ViewAs(pct),
			statusLine,
			"",
			v.outcomes.View(),
			footer,
		)
	}
	return ""
}
