package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

// calendarView lists upcoming releases grouped by day.
type calendarView struct {
	entries []riven.CalendarEntry
	vp      viewport.Model
	loaded  bool
}

func newCalendarView() calendarView {
	return calendarView{vp: viewport.New(80, 20)}
}

func (v *calendarView) setEntries(entries []riven.CalendarEntry) {
	v.entries = entries
	v.loaded = true
	v.vp.SetContent(v.render())
}

func (v *calendarView) setSize(width, height int) {
	v.vp.Width = width
	v.vp.Height = max(height-2, 3)
	if v.loaded {
		v.vp.SetContent(v.render())
	}
}

func (v *calendarView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return cmd
}

func (v *calendarView) render() string {
	if len(v.entries) == 0 {
		return styles.TextMutedStyle.Render("nothing upcoming")
	}

	var b strings.Builder
	var lastDay string
	for _, entry := range v.entries {
		aired, ok := entry.AiredTime()
		day := "unscheduled"
		if ok {
			day = aired.Format("Mon, Jan 2")
			if sameDay(aired, time.Now()) {
				day += " (today)"
			}
		}
		if day != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(styles.TitleStyle.Render(styles.IconCalendar+" "+day) + "\n")
			lastDay = day
		}

		icon := styles.IconShow
		if entry.ItemType == "movie" {
			icon = styles.IconMovie
		}
		line := icon + " " + entry.DisplayTitle()
		if entry.Season != nil && entry.Episode != nil {
			line += styles.TextMutedStyle.Render(fmt.Sprintf(" S%02dE%02d", *entry.Season, *entry.Episode))
		}
		if ok {
			line += styles.TextMutedStyle.Render("  " + humanize.Time(aired))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (v *calendarView) view() string {
	if !v.loaded {
		return styles.TextMutedStyle.Render("loading…")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.vp.View(),
		styles.HelpStyle.Render("j/k scroll · R refresh"),
	)
}
