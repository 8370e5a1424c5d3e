// Package components holds reusable Bubble Tea widgets shared by the views.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

const (
	modalMaxListHeight = 12
	modalWidth         = 64
)

// ConfirmModal asks the user to acknowledge a batch plan before it runs.
// Every target label is listed in full inside a scrollable viewport; there
// is no truncated preview of the target set.
type ConfirmModal struct {
	plan      batch.Plan
	title     string
	list      viewport.Model
	confirmed bool
	cancelled bool
}

// NewConfirmModal creates a confirmation modal for the plan. An empty title
// falls back to a generated one.
func NewConfirmModal(plan batch.Plan, title string) ConfirmModal {
	if title == "" {
		verb := string(plan.Action)
		title = fmt.Sprintf("Confirm %s of %d item(s)?", verb, len(plan.Items))
	}

	lines := make([]string, 0, len(plan.Items))
	for i, item := range plan.Items {
		lines = append(lines, fmt.Sprintf("%3d. %s", i+1, item.Label))
	}

	height := len(lines)
	if height > modalMaxListHeight {
		height = modalMaxListHeight
	}
	list := viewport.New(modalWidth-4, height)
	list.SetContent(strings.Join(lines, "\n"))

	return ConfirmModal{
		plan:  plan,
		title: title,
		list:  list,
	}
}

// Plan returns the plan under review.
func (m ConfirmModal) Plan() batch.Plan {
	return m.plan
}

// Update handles input for the confirmation modal.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y", "enter":
		m.confirmed = true
		return m, nil
	case "n", "N", "esc", "q":
		m.cancelled = true
		return m, nil
	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the confirmation modal.
func (m ConfirmModal) View() string {
	frame := styles.ModalStyle
	if m.plan.Action.Destructive() {
		frame = styles.ModalDangerStyle
	}

	title := styles.ModalTitleStyle.Render(m.title)
	action := styles.TextPrimaryBoldStyle.Render(strings.ToUpper(string(m.plan.Action)))
	count := styles.TextMutedStyle.Render(fmt.Sprintf("%d item(s)", len(m.plan.Items)))
	header := action + " " + count

	help := styles.ModalHelpStyle.Render("y/enter confirm · n/esc cancel · j/k scroll")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		header,
		"",
		m.list.View(),
		"",
		help,
	)
	return frame.Width(modalWidth).Render(body)
}

// Confirmed returns true if user confirmed.
func (m ConfirmModal) Confirmed() bool {
	return m.confirmed
}

// Cancelled returns true if user cancelled.
func (m ConfirmModal) Cancelled() bool {
	return m.cancelled
}
