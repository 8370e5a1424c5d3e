package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/updatecheck"
)

const updateModalWidth = 72

// updateModal announces a newer release with its notes rendered as
// markdown. Any dismiss key closes it for the rest of the session.
type updateModal struct {
	result  *updatecheck.Result
	vp      viewport.Model
	visible bool
}

func newUpdateModal(result *updatecheck.Result) updateModal {
	body := result.Notes
	if rendered, err := renderMarkdown(body, updateModalWidth-6); err == nil {
		body = rendered
	}

	vp := viewport.New(updateModalWidth-4, 14)
	vp.SetContent(body)

	return updateModal{
		result:  result,
		vp:      vp,
		visible: true,
	}
}

func renderMarkdown(text string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}

func (m updateModal) Update(msg tea.Msg) (updateModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q", "enter":
		m.visible = false
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m updateModal) View() string {
	title := styles.ModalTitleStyle.Render(
		fmt.Sprintf("Update available: %s → %s", m.result.Current, m.result.Latest))
	help := styles.ModalHelpStyle.Render("j/k scroll · esc dismiss")

	return styles.ModalStyle.Width(updateModalWidth).Render(
		title + "\n\n" + m.vp.View() + "\n" + help,
	)
}
