package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/metadata/tmdb"
)

// searchView searches TMDB and lets the user queue additions to the
// library. Enter in the input runs the search; "a" on a result proposes an
// add batch through the root model.
type searchView struct {
	input     textinput.Model
	results   table.Model
	page      tmdb.Page
	query     string
	searching bool
	focused   bool // input focused vs results focused
	enabled   bool
}

func newSearchView(enabled bool) searchView {
	input := textinput.New()
	input.Placeholder = "search movies and shows"
	input.Prompt = styles.IconSearch + " "
	input.CharLimit = 120
	input.Focus()

	columns := []table.Column{
		{Title: "Title", Width: 44},
		{Title: "Type", Width: 8},
		{Title: "Year", Width: 6},
		{Title: "Rating", Width: 7},
	}
	results := table.New(table.WithColumns(columns))
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	results.SetStyles(ts)

	return searchView{
		input:   input,
		results: results,
		focused: true,
		enabled: enabled,
	}
}

func (v *searchView) setResults(query string, page tmdb.Page) {
	v.query = query
	v.page = page
	v.searching = false

	rows := make([]table.Row, 0, len(page.Results))
	for _, r := range page.Results {
		rows = append(rows, table.Row{
			r.DisplayTitle(),
			r.MediaType,
			r.Year(),
			fmt.Sprintf("%.1f", r.VoteAverage),
		})
	}
	v.results.SetRows(rows)
	if len(rows) > 0 {
		v.focusResults()
	}
}

func (v *searchView) current() (tmdb.Result, bool) {
	idx := v.results.Cursor()
	if idx < 0 || idx >= len(v.page.Results) {
		return tmdb.Result{}, false
	}
	return v.page.Results[idx], true
}

func (v *searchView) focusInput() {
	v.focused = true
	v.input.Focus()
	v.results.Blur()
}

func (v *searchView) focusResults() {
	v.focused = false
	v.input.Blur()
	v.results.Focus()
}

func (v *searchView) setSize(width, height int) {
	v.input.Width = max(width-4, 20)
	v.results.SetWidth(width)
	v.results.SetHeight(max(height-4, 3))
}

// update returns a non-empty query when a search should run.
func (v *searchView) update(msg tea.Msg) (runQuery string, cmd tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return "", nil
	}

	if v.focused {
		switch keyMsg.String() {
		case "enter":
			query := v.input.Value()
			if query != "" {
				v.searching = true
				return query, nil
			}
			return "", nil
		case "down":
			if len(v.page.Results) > 0 {
				v.focusResults()
				return "", nil
			}
		case "esc":
			if len(v.page.Results) > 0 {
				v.focusResults()
				return "", nil
			}
		}
		v.input, cmd = v.input.Update(msg)
		return "", cmd
	}

	switch keyMsg.String() {
	case "/":
		v.focusInput()
		return "", nil
	}
	v.results, cmd = v.results.Update(msg)
	return "", cmd
}

func (v *searchView) view() string {
	if !v.enabled {
		return styles.TextMutedStyle.Render("search requires a tmdb bearer token in the config")
	}

	status := ""
	switch {
	case v.searching:
		status = styles.TextMutedStyle.Render("searching…")
	case v.query != "":
		status = styles.TextMutedStyle.Render(
			fmt.Sprintf("%d results for %q · a: add to library · /: new search", len(v.page.Results), v.query))
	default:
		status = styles.HelpStyle.Render("enter: search")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.input.View(),
		status,
		v.results.View(),
	)
}
