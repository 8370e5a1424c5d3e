package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/core/notify"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
	tuinotify "github.com/rivenmedia/riven-tui/internal/tui/notify"
)

// logsView shows the recent notification feed and drives backend log
// uploads. "u" uploads the backend logs and shows the share URL.
type logsView struct {
	bus       *tuinotify.Bus
	vp        viewport.Model
	limit     int
	shareURL  string
	uploading bool
}

func newLogsView(bus *tuinotify.Bus, limit int) logsView {
	return logsView{
		bus:   bus,
		vp:    viewport.New(80, 20),
		limit: limit,
	}
}

func (v *logsView) setSize(width, height int) {
	v.vp.Width = width
	v.vp.Height = max(height-3, 3)
}

func (v *logsView) refresh() {
	recent := v.bus.Recent()
	if len(recent) > v.limit {
		recent = recent[len(recent)-v.limit:]
	}

	var b strings.Builder
	for _, n := range recent {
		stamp := styles.TextMutedStyle.Render(n.CreatedAt.Format("15:04:05"))
		var line string
		switch n.Level {
		case notify.LevelError:
			line = styles.TextErrorStyle.Render(n.Message)
		case notify.LevelWarning:
			line = styles.TextWarningStyle.Render(n.Message)
		case notify.LevelSuccess:
			line = styles.TextSuccessStyle.Render(n.Message)
		default:
			line = n.Message
		}
		b.WriteString(fmt.Sprintf("%s %s\n", stamp, line))
	}
	if b.Len() == 0 {
		b.WriteString(styles.TextMutedStyle.Render("no notifications yet"))
	}
	v.vp.SetContent(b.String())
	v.vp.GotoBottom()
}

// update returns true when an upload was requested.
func (v *logsView) update(msg tea.Msg) (upload bool, cmd tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "u" {
		if !v.uploading {
			v.uploading = true
			return true, nil
		}
		return false, nil
	}
	v.vp, cmd = v.vp.Update(msg)
	return false, cmd
}

func (v *logsView) setShareURL(url string) {
	v.shareURL = url
	v.uploading = false
}

func (v *logsView) uploadFailed() {
	v.uploading = false
}

func (v *logsView) view() string {
	var footer string
	switch {
	case v.uploading:
		footer = styles.TextMutedStyle.Render("uploading backend logs…")
	case v.shareURL != "":
		footer = styles.TextSuccessStyle.Render(styles.IconLogs+" logs uploaded: ") + v.shareURL
	default:
		footer = styles.HelpStyle.Render("u: upload backend logs · j/k scroll")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.vp.View(),
		footer,
	)
}
