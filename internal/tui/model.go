// Package tui implements the interactive terminal client. The root model
// owns the tab bar, the shared modal and toast layers, and delegates the
// rest to per-view sub-models.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/config"
	"github.com/rivenmedia/riven-tui/internal/core/kv"
	corenotify "github.com/rivenmedia/riven-tui/internal/core/notify"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/library"
	"github.com/rivenmedia/riven-tui/internal/metadata/tmdb"
	"github.com/rivenmedia/riven-tui/internal/riven"
	"github.com/rivenmedia/riven-tui/internal/tui/components"
	"github.com/rivenmedia/riven-tui/internal/tui/notify"
	"github.com/rivenmedia/riven-tui/internal/updatecheck"
)

// Deps carries everything the TUI needs, built once in the command layer.
type Deps struct {
	Service    *library.Service
	Bus        *notify.Bus
	Config     *config.Config
	ConfigPath string
	KV         kv.KV
	Version    string
}

// proposedPlanMsg opens the confirmation modal for a plan built
// asynchronously (e.g. after resolving a search result's external id).
type proposedPlanMsg struct {
	plan  batch.Plan
	title string
}

// Model is the root Bubble Tea model.
type Model struct {
	deps   Deps
	active ViewType
	width  int
	height int

	dashboard dashboardView
	libraryV  libraryView
	search    searchView
	detail    detailView
	massOps   massOpsView
	calendar  calendarView
	logs      logsView
	settings  settingsView

	toasts    *ToastController
	toastView *ToastView
	confirm   *components.ConfirmModal
	update    *updateModal
	available *updatecheck.Result

	showHelp    bool
	confirmQuit bool

	bindings      map[string]boundAction
	notifications chan tea.Msg
	batchEvents   chan tea.Msg
	batchCancel   context.CancelFunc
}

// NewModel builds the root model and subscribes the toast stack to the
// notification bus.
func NewModel(deps Deps) *Model {
	m := &Model{
		deps:          deps,
		active:        ViewDashboard,
		dashboard:     newDashboardView(deps.Service.HasTMDB()),
		libraryV:      newLibraryView(deps.Config.UI.PageSize),
		search:        newSearchView(deps.Service.HasTMDB()),
		massOps:       newMassOpsView(),
		calendar:      newCalendarView(),
		logs:          newLogsView(deps.Bus, deps.Config.Logs.DisplayLimit),
		settings:      newSettingsView(deps.Config, deps.ConfigPath),
		toasts:        NewToastController(),
		bindings:      resolveKeybindings(deps.Config.Keybindings),
		notifications: make(chan tea.Msg, 64),
	}
	m.toastView = NewToastView(m.toasts)

	deps.Bus.Subscribe(func(n corenotify.Notification) {
		select {
		case m.notifications <- notificationMsg{notification: n}:
		default:
			// A full channel drops the toast; the logs view still shows it.
		}
	})

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchDashboardCmd(),
		m.fetchLibraryPageCmd(m.libraryV.params()),
		m.updateCheckCmd(),
		m.scheduleRefreshTick(),
		m.settings.init(),
		waitForNotification(m.notifications),
	)
}

func waitForNotification(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		body := m.height - 3 // tab bar + status bar
		m.libraryV.setSize(m.width, body)
		m.search.setSize(m.width, body)
		m.massOps.setSize(m.width, body)
		m.calendar.setSize(m.width, body)
		m.logs.setSize(m.width, body)
		return m, nil

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case notificationMsg:
		m.toasts.Push(msg.notification)
		m.logs.refresh()
		cmds := []tea.Cmd{waitForNotification(m.notifications)}
		if !m.toasts.Ticking() {
			m.toasts.SetTicking(true)
			cmds = append(cmds, scheduleToastTick())
		}
		return m, tea.Batch(cmds...)

	case updateAvailableMsg:
		m.available = msg.result
		modal := newUpdateModal(msg.result)
		m.update = &modal
		return m, nil

	case refreshTickMsg:
		cmds := []tea.Cmd{m.scheduleRefreshTick()}
		if m.active == ViewDashboard {
			cmds = append(cmds, m.fetchDashboardCmd())
		}
		return m, tea.Batch(cmds...)

	case dashboardMsg:
		m.dashboard.setData(msg.dash)
		return m, nil

	case libraryPageMsg:
		m.libraryV.setPage(msg.page)
		return m, nil

	case searchResultsMsg:
		m.search.setResults(msg.query, msg.page)
		return m, nil

	case itemDetailMsg:
		m.detail.show(msg.item)
		return m, nil

	case calendarMsg:
		m.calendar.setEntries(msg.entries)
		return m, nil

	case scanResultMsg:
		m.massOps.setReport(msg.report)
		return m, nil

	case logsUploadedMsg:
		m.logs.setShareURL(msg.url)
		m.deps.Bus.Successf("backend logs uploaded")
		return m, nil

	case proposedPlanMsg:
		modal := components.NewConfirmModal(msg.plan, msg.title)
		m.confirm = &modal
		return m, nil

	case batchEventMsg:
		m.massOps.addOutcome(msg.outcome, msg.counts)
		return m, waitForBatchEvent(m.batchEvents)

	case batchDoneMsg:
		m.massOps.finish(msg.summary)
		m.batchCancel = nil
		return m, tea.Batch(
			waitForBatchEvent(m.batchEvents),
			m.fetchLibraryPageCmd(m.libraryV.params()),
		)

	case batchErrMsg:
		m.massOps.batchFailed()
		m.batchCancel = nil
		m.deps.Bus.Errorf("batch failed: %v", msg.err)
		return m, waitForBatchEvent(m.batchEvents)

	case errMsg:
		m.deps.Bus.Errorf("%s: %v", msg.op, msg.err)
		if msg.op == "scan list" {
			m.massOps.scanFailed()
		}
		if msg.op == "upload logs" {
			m.logs.uploadFailed()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateActiveView(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, tea.Quit
		default:
			m.confirmQuit = false
			return m, nil
		}
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Modals swallow all input while open.
	if m.confirm != nil {
		modal, cmd := m.confirm.Update(msg)
		m.confirm = &modal
		switch {
		case modal.Confirmed():
			plan := modal.Plan()
			m.confirm = nil
			m.massOps.begin(plan)
			m.active = ViewMassOps
			return m, m.startBatch(plan)
		case modal.Cancelled():
			m.confirm = nil
			return m, nil
		}
		return m, cmd
	}
	if m.update != nil {
		modal, cmd := m.update.Update(msg)
		if !modal.visible {
			m.update = nil
			return m, nil
		}
		m.update = &modal
		return m, cmd
	}

	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.captivesInput() {
			// A running batch deserves a second thought; quitting kills
			// the program, not the batch's remote effects.
			if m.massOps.phase == massOpsRunning {
				m.confirmQuit = true
				return m, nil
			}
			return m, tea.Quit
		}
	case "?":
		if !m.captivesInput() {
			m.showHelp = true
			return m, nil
		}
	case "U":
		if !m.captivesInput() && m.available != nil && m.update == nil {
			modal := newUpdateModal(m.available)
			m.update = &modal
			return m, nil
		}
	case "tab":
		// The settings form needs tab for field navigation; everywhere else
		// it cycles views, including past focused text inputs.
		if m.active != ViewSettings {
			m.switchView(ViewType((int(m.active) + 1) % len(allViews)))
			return m, m.enterViewCmd()
		}
	case "shift+tab":
		if m.active != ViewSettings {
			m.switchView(ViewType((int(m.active) + len(allViews) - 1) % len(allViews)))
			return m, m.enterViewCmd()
		}
	case "1", "2", "3", "4", "5", "6", "7":
		if !m.captivesInput() {
			m.switchView(ViewType(int(key[0] - '1')))
			return m, m.enterViewCmd()
		}
	}

	return m, m.updateActiveView(msg)
}

// captivesInput reports whether the active view holds a focused text input
// that should receive printable keys instead of global shortcuts.
func (m *Model) captivesInput() bool {
	switch m.active {
	case ViewLibrary:
		return m.libraryV.searching
	case ViewSearch:
		return m.search.focused
	case ViewMassOps:
		return m.massOps.phase == massOpsInput
	case ViewSettings:
		return true
	}
	return false
}

func (m *Model) switchView(v ViewType) {
	m.detail.hide()
	m.active = v
}

// enterViewCmd triggers the fetch a view needs when it becomes active.
func (m *Model) enterViewCmd() tea.Cmd {
	switch m.active {
	case ViewDashboard:
		return m.fetchDashboardCmd()
	case ViewLibrary:
		if m.libraryV.loading {
			return m.fetchLibraryPageCmd(m.libraryV.params())
		}
	case ViewCalendar:
		if !m.calendar.loaded {
			return m.fetchCalendarCmd()
		}
	case ViewLogs:
		m.logs.refresh()
	}
	return nil
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.active {
	case ViewLibrary:
		if m.detail.visible {
			return m.handleDetailKey(msg)
		}
		if isKey && !m.libraryV.searching {
			if cmd, handled := m.handleActionKey(keyMsg.String(), m.libraryV.selection()); handled {
				return cmd
			}
			if keyMsg.String() == "enter" {
				if item, ok := m.libraryV.current(); ok {
					m.detail.loaded = false
					m.detail.visible = true
					return m.fetchItemCmd(item.StringID(), item.Type)
				}
				return nil
			}
		}
		reload, cmd := m.libraryV.update(msg)
		if reload {
			return m.fetchLibraryPageCmd(m.libraryV.params())
		}
		return cmd

	case ViewSearch:
		if isKey && !m.search.focused && keyMsg.String() == "a" {
			if result, ok := m.search.current(); ok {
				return m.proposeAddCmd(result)
			}
			return nil
		}
		query, cmd := m.search.update(msg)
		if query != "" {
			return m.searchCmd(query, 1)
		}
		return cmd

	case ViewMassOps:
		if isKey && keyMsg.String() == "c" && m.massOps.phase == massOpsRunning {
			if m.batchCancel != nil {
				m.batchCancel()
				m.deps.Bus.Warnf("cancelling at next burst boundary")
			}
			return nil
		}
		ref, plan, title, cmd := m.massOps.update(msg, m.bindings)
		if ref != "" {
			return m.scanListCmd(ref)
		}
		if plan != nil {
			modal := components.NewConfirmModal(*plan, title)
			m.confirm = &modal
			return nil
		}
		return cmd

	case ViewCalendar:
		if isKey && keyMsg.String() == "R" {
			m.calendar.loaded = false
			return m.fetchCalendarCmd()
		}
		return m.calendar.update(msg)

	case ViewLogs:
		upload, cmd := m.logs.update(msg)
		if upload {
			return m.uploadLogsCmd()
		}
		return cmd

	case ViewSettings:
		if isKey && keyMsg.String() == "esc" {
			m.switchView(ViewDashboard)
			return m.enterViewCmd()
		}
		saved, cmd := m.settings.update(msg)
		if saved {
			m.deps.Bus.Successf("settings saved")
			m.bindings = resolveKeybindings(m.deps.Config.Keybindings)
			m.logs.limit = m.deps.Config.Logs.DisplayLimit
		}
		return cmd
	}

	return nil
}

func (m *Model) handleDetailKey(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if keyMsg.String() == "esc" {
		m.detail.hide()
		return nil
	}
	if m.detail.loaded {
		item := m.detail.item
		if cmd, handled := m.handleActionKey(keyMsg.String(), []riven.MediaItem{item}); handled {
			return cmd
		}
	}
	return nil
}

// handleActionKey opens the confirmation modal when key is a configured
// batch action and there is a selection to act on.
func (m *Model) handleActionKey(key string, selection []riven.MediaItem) (tea.Cmd, bool) {
	bound, ok := m.bindings[key]
	if !ok {
		return nil, false
	}
	if len(selection) == 0 {
		m.deps.Bus.Warnf("nothing selected")
		return nil, true
	}

	plan := library.PlanFor(selection, bound.action)
	modal := components.NewConfirmModal(plan, bound.confirm)
	m.confirm = &modal
	return nil, true
}

// proposeAddCmd resolves a search result's external id and proposes a
// one-item add batch.
func (m *Model) proposeAddCmd(result tmdb.Result) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		target, err := svc.FindExternal(ctx, result)
		if err != nil {
			return errMsg{op: "resolve item", err: err}
		}
		plan := batch.Plan{Items: []batch.TargetItem{target}, Action: batch.ActionAdd}
		return proposedPlanMsg{
			plan:  plan,
			title: fmt.Sprintf("Add %s to the library?", target.Label),
		}
	}
}

func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	tabBar := m.renderTabBar()
	body := m.renderBody()
	statusBar := m.renderStatusBar()

	bodyHeight := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	// Modals replace the body rather than compositing over it.
	switch {
	case m.confirmQuit:
		prompt := styles.ModalDangerStyle.Render(
			"A batch is still running.\n\nQuit anyway? in-flight items finish on the backend,\nbut progress will no longer be shown.\n\ny: quit · any other key: stay")
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, prompt)
	case m.showHelp:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderHelp())
	case m.confirm != nil:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View())
	case m.update != nil:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.update.View())
	default:
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	}

	sections := []string{tabBar, body}
	if m.toasts.HasToasts() {
		sections = append(sections, m.toastView.View(m.width))
	}
	sections = append(sections, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderBody() string {
	switch m.active {
	case ViewDashboard:
		return m.dashboard.view(m.width)
	case ViewLibrary:
		if m.detail.visible {
			return m.detail.view()
		}
		return m.libraryV.view()
	case ViewSearch:
		return m.search.view()
	case ViewMassOps:
		return m.massOps.view(m.bindings)
	case ViewCalendar:
		return m.calendar.view()
	case ViewLogs:
		return m.logs.view()
	case ViewSettings:
		return m.settings.view()
	}
	return ""
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys") + "\n\n")
	b.WriteString("tab / shift+tab   next / previous view\n")
	b.WriteString("1-7               jump to view\n")
	b.WriteString("?                 this help\n")
	b.WriteString("q                 quit\n\n")

	b.WriteString(styles.TextPrimaryBoldStyle.Render("Library") + "\n")
	b.WriteString("space             toggle selection\n")
	b.WriteString("a / A             select all / none\n")
	b.WriteString("s / t / o         cycle state / type filter / sort\n")
	b.WriteString("/                 title search\n")
	b.WriteString("[ / ]             previous / next page\n")
	b.WriteString("enter             item detail\n")
	for _, key := range sortedKeys(m.bindings) {
		b.WriteString(fmt.Sprintf("%-17s %s selected items\n", key, m.bindings[key].help))
	}

	b.WriteString("\n" + styles.TextPrimaryBoldStyle.Render("Mass Ops") + "\n")
	b.WriteString("enter             scan list\n")
	b.WriteString("a                 add missing items\n")
	b.WriteString("c                 cancel batch at next burst\n")

	b.WriteString("\n" + styles.HelpStyle.Render("any key to close"))
	return styles.ModalStyle.Render(b.String())
}

func (m *Model) renderTabBar() string {
	tabs := make([]string, 0, len(allViews))
	for i, v := range allViews {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.active {
			tabs = append(tabs, styles.ViewSelectedStyle.Render(label))
		} else {
			tabs = append(tabs, styles.ViewNormalStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderStatusBar() string {
	help := "tab: switch · ?: help · q: quit"
	if m.active == ViewLibrary {
		help = "space: select · a/A: all/none · s/t/o: filters · /: search · [/]: pages · " + help
	}
	version := m.deps.Version
	if version == "" {
		version = "dev"
	}

	left := styles.StatusBarStyle.Render(help)
	right := styles.StatusKeyStyle.Render("riven-tui " + version)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + styles.StatusBarStyle.Render(strings.Repeat(" ", gap)) + right
}
