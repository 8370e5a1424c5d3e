package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

// detailView shows one library item in full. It overlays the library view;
// esc returns, and the configured action keys run one-item batches.
type detailView struct {
	item    riven.MediaItem
	loaded  bool
	visible bool
}

func (v *detailView) show(item riven.MediaItem) {
	v.item = item
	v.loaded = true
	v.visible = true
}

func (v *detailView) hide() {
	v.visible = false
}

func (v *detailView) view() string {
	if !v.loaded {
		return styles.TextMutedStyle.Render("loading…")
	}

	item := v.item
	var b strings.Builder

	icon := styles.IconMovie
	if item.Type != "movie" {
		icon = styles.IconShow
	}
	b.WriteString(styles.TitleStyle.Render(icon+" "+item.Label()) + "\n\n")

	state := lipgloss.NewStyle().Foreground(styles.StateColor(item.State)).Render(item.State)
	b.WriteString(row("State", state))
	b.WriteString(row("Type", item.Type))
	b.WriteString(row("Riven ID", item.StringID()))
	if item.TMDBID != "" {
		b.WriteString(row("TMDB", string(item.TMDBID)))
	}
	if item.TVDBID != "" {
		b.WriteString(row("TVDB", string(item.TVDBID)))
	}
	if item.IMDBID != "" {
		b.WriteString(row("IMDB", string(item.IMDBID)))
	}
	if item.AiredAt != "" {
		b.WriteString(row("Aired", item.AiredAt))
	}
	if item.RequestedAt != "" {
		b.WriteString(row("Requested", item.RequestedAt))
	}

	b.WriteString("\n" + styles.HelpStyle.Render("esc: back · action keys run on this item"))
	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s\n", styles.TextMutedStyle.Render(fmt.Sprintf("%-10s", label)), value)
}
