package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/library"
)

// dashboardView renders backend stats, service health, recent additions,
// and TMDB trending titles.
type dashboardView struct {
	dash    library.Dashboard
	loaded  bool
	hasTMDB bool
}

func newDashboardView(hasTMDB bool) dashboardView {
	return dashboardView{hasTMDB: hasTMDB}
}

func (v *dashboardView) setData(dash library.Dashboard) {
	v.dash = dash
	v.loaded = true
}

func (v *dashboardView) view(width int) string {
	if !v.loaded {
		return styles.TextMutedStyle.Render("loading…")
	}
	if !v.dash.BackendOK {
		return styles.TextErrorStyle.Render(styles.IconFail + " backend unreachable: " + v.dash.BackendErr)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		v.statsPanel(),
		"",
		v.servicesPanel(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		v.recentPanel(),
		"",
		v.trendingPanel(),
	)

	colWidth := max(width/2-2, 30)
	leftCol := lipgloss.NewStyle().Width(colWidth).Render(left)
	rightCol := lipgloss.NewStyle().Width(colWidth).Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)
}

func (v *dashboardView) statsPanel() string {
	stats := v.dash.Stats
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Library") + "\n")
	b.WriteString(fmt.Sprintf("%s items · %s movies · %s shows\n",
		humanize.Comma(int64(stats.TotalItems)),
		humanize.Comma(int64(stats.TotalMovies)),
		humanize.Comma(int64(stats.TotalShows))))

	// Bar chart of non-zero states, largest first; ties stay alphabetical.
	states := make([]string, 0, len(stats.States))
	maxCount := 0
	for state, count := range stats.States {
		if count == 0 {
			continue
		}
		states = append(states, state)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Slice(states, func(i, j int) bool {
		a, z := stats.States[states[i]], stats.States[states[j]]
		if a != z {
			return a > z
		}
		return states[i] < states[j]
	})

	const barWidth = 20
	for _, state := range states {
		count := stats.States[state]
		bar := strings.Repeat("█", max(count*barWidth/maxCount, 1))
		line := fmt.Sprintf("%-20s %-*s %d", state, barWidth, bar, count)
		b.WriteString(lipgloss.NewStyle().Foreground(styles.StateColor(state)).Render(line) + "\n")
	}
	return b.String()
}

func (v *dashboardView) servicesPanel() string {
	if len(v.dash.Services) == 0 {
		return ""
	}
	names := make([]string, 0, len(v.dash.Services))
	for name := range v.dash.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Services") + "\n")
	for _, name := range names {
		if v.dash.Services[name] {
			b.WriteString(styles.TextSuccessStyle.Render(styles.IconOK+" "+name) + "\n")
		} else {
			b.WriteString(styles.TextErrorStyle.Render(styles.IconFail+" "+name) + "\n")
		}
	}
	return b.String()
}

func (v *dashboardView) recentPanel() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Recently Added") + "\n")
	if len(v.dash.RecentlyAdded) == 0 {
		b.WriteString(styles.TextMutedStyle.Render("nothing yet"))
		return b.String()
	}
	for _, item := range v.dash.RecentlyAdded {
		icon := styles.IconMovie
		if item.Type != "movie" {
			icon = styles.IconShow
		}
		line := fmt.Sprintf("%s %s", icon, item.Label())
		if t, ok := item.RequestedTime(); ok {
			line += styles.TextMutedStyle.Render("  " + humanize.Time(t))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (v *dashboardView) trendingPanel() string {
	if !v.hasTMDB {
		return styles.TextMutedStyle.Render("trending requires a tmdb bearer token")
	}
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Trending Today") + "\n")
	for _, r := range v.dash.Trending {
		line := r.DisplayTitle()
		if y := r.Year(); y != "" {
			line += " (" + y + ")"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
