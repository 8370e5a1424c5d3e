package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

// stateFilters cycles through "" (all) plus every backend state.
var stateFilters = append([]string{""}, riven.States()...)

var typeFilters = []string{"", riven.TypeMovie, riven.TypeShow, riven.TypeAnime}

var sortOrders = []string{riven.SortDateDesc, riven.SortDateAsc, riven.SortTitleAsc, riven.SortTitleDesc}

// libraryView is the item browser: a paged table over the backend library
// with multi-select, search, state/type/sort filters, and action keys
// handled by the root model.
type libraryView struct {
	table      table.Model
	search     textinput.Model
	searching  bool
	items      []riven.MediaItem
	selected   map[string]bool
	page       int
	totalPages int
	totalItems int
	stateIdx   int
	typeIdx    int
	sortIdx    int
	pageSize   int
	loading    bool
}

func newLibraryView(pageSize int) libraryView {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Title", Width: 44},
		{Title: "Type", Width: 8},
		{Title: "State", Width: 14},
		{Title: "Requested", Width: 14},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	search := textinput.New()
	search.Placeholder = "title search"
	search.Prompt = styles.IconSearch + " "
	search.CharLimit = 120

	return libraryView{
		table:    t,
		search:   search,
		selected: make(map[string]bool),
		page:     1,
		pageSize: pageSize,
		loading:  true,
	}
}

// params builds the list request for the current page and filters.
func (v *libraryView) params() riven.ListParams {
	p := riven.ListParams{
		Limit:  v.pageSize,
		Page:   v.page,
		Sort:   sortOrders[v.sortIdx],
		Search: strings.TrimSpace(v.search.Value()),
	}
	if s := stateFilters[v.stateIdx]; s != "" {
		p.States = []string{s}
	}
	if t := typeFilters[v.typeIdx]; t != "" {
		p.Type = t
	}
	return p
}

func (v *libraryView) setPage(page riven.ItemPage) {
	v.items = page.Items
	v.totalPages = page.TotalPages
	v.totalItems = page.TotalItems
	v.loading = false
	v.refreshRows()
}

func (v *libraryView) refreshRows() {
	rows := make([]table.Row, 0, len(v.items))
	for _, item := range v.items {
		marker := " "
		if v.selected[item.StringID()] {
			marker = styles.IconOK
		}
		requested := ""
		if t, ok := item.RequestedTime(); ok {
			requested = humanize.Time(t)
		}
		rows = append(rows, table.Row{
			marker,
			item.Label(),
			item.Type,
			item.State,
			requested,
		})
	}
	v.table.SetRows(rows)
}

// current returns the item under the cursor.
func (v *libraryView) current() (riven.MediaItem, bool) {
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(v.items) {
		return riven.MediaItem{}, false
	}
	return v.items[idx], true
}

// selection returns the selected items, falling back to the cursor row so
// single-item actions need no explicit select.
func (v *libraryView) selection() []riven.MediaItem {
	if len(v.selected) == 0 {
		if item, ok := v.current(); ok {
			return []riven.MediaItem{item}
		}
		return nil
	}
	var out []riven.MediaItem
	for _, item := range v.items {
		if v.selected[item.StringID()] {
			out = append(out, item)
		}
	}
	return out
}

func (v *libraryView) toggleCurrent() {
	item, ok := v.current()
	if !ok {
		return
	}
	id := item.StringID()
	if v.selected[id] {
		delete(v.selected, id)
	} else {
		v.selected[id] = true
	}
	v.refreshRows()
}

func (v *libraryView) selectAll() {
	for _, item := range v.items {
		v.selected[item.StringID()] = true
	}
	v.refreshRows()
}

func (v *libraryView) clearSelection() {
	v.selected = make(map[string]bool)
	v.refreshRows()
}

func (v *libraryView) setSize(width, height int) {
	v.table.SetWidth(width)
	v.table.SetHeight(height - 3)
	v.search.Width = max(width-6, 20)
}

// update handles navigation keys and returns true with a reload request
// when the page or a filter changed.
func (v *libraryView) update(msg tea.Msg) (reload bool, cmd tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		v.table, cmd = v.table.Update(msg)
		return false, cmd
	}

	if v.searching {
		switch keyMsg.String() {
		case "enter":
			v.searching = false
			v.search.Blur()
			v.page = 1
			v.loading = true
			return true, nil
		case "esc":
			v.searching = false
			v.search.Blur()
			if v.search.Value() != "" {
				v.search.SetValue("")
				v.page = 1
				v.loading = true
				return true, nil
			}
			return false, nil
		}
		v.search, cmd = v.search.Update(msg)
		return false, cmd
	}

	switch keyMsg.String() {
	case " ":
		v.toggleCurrent()
		return false, nil
	case "a":
		v.selectAll()
		return false, nil
	case "A":
		v.clearSelection()
		return false, nil
	case "/":
		v.searching = true
		return false, v.search.Focus()
	case "]", "right":
		if v.totalPages == 0 || v.page < v.totalPages {
			v.page++
			v.loading = true
			return true, nil
		}
		return false, nil
	case "[", "left":
		if v.page > 1 {
			v.page--
			v.loading = true
			return true, nil
		}
		return false, nil
	case "s":
		v.stateIdx = (v.stateIdx + 1) % len(stateFilters)
		v.page = 1
		v.loading = true
		return true, nil
	case "t":
		v.typeIdx = (v.typeIdx + 1) % len(typeFilters)
		v.page = 1
		v.loading = true
		return true, nil
	case "o":
		v.sortIdx = (v.sortIdx + 1) % len(sortOrders)
		v.page = 1
		v.loading = true
		return true, nil
	}

	v.table, cmd = v.table.Update(msg)
	return false, cmd
}

func (v *libraryView) view() string {
	state := stateFilters[v.stateIdx]
	if state == "" {
		state = "all"
	}
	mediaType := typeFilters[v.typeIdx]
	if mediaType == "" {
		mediaType = "all"
	}
	header := fmt.Sprintf("state: %s  type: %s  sort: %s  selected: %d  page %d/%d (%d items)",
		state, mediaType, sortOrders[v.sortIdx], len(v.selected), v.page, max(v.totalPages, 1), v.totalItems)
	if q := strings.TrimSpace(v.search.Value()); q != "" && !v.searching {
		header += fmt.Sprintf("  search: %q", q)
	}

	sections := []string{styles.TextMutedStyle.Render(header)}
	if v.searching {
		sections = append(sections, v.search.View())
	}
	if v.loading {
		sections = append(sections, styles.TextMutedStyle.Render("loading…"))
	} else {
		sections = append(sections, v.table.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
