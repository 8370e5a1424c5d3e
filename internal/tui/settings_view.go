package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rivenmedia/riven-tui/internal/core/config"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

// settingsView edits the config file in place with a huh form. Saving
// re-applies the theme immediately; backend and batch changes take effect
// on the next operation.
type settingsView struct {
	form *huh.Form
	cfg  *config.Config
	path string

	backendURL  string
	apiKey      string
	tmdbToken   string
	theme       string
	burstSize   string
	intervalSec string
	pageSize    string
	logLimit    string

	saved  bool
	errMsg string
}

func newSettingsView(cfg *config.Config, path string) settingsView {
	v := settingsView{cfg: cfg, path: path}
	v.rebuild()
	return v
}

func (v *settingsView) rebuild() {
	v.backendURL = v.cfg.Backend.URL
	v.apiKey = v.cfg.Backend.APIKey
	v.tmdbToken = v.cfg.TMDB.BearerToken
	v.theme = v.cfg.UI.Theme
	v.burstSize = strconv.Itoa(v.cfg.Batch.BurstSize)
	v.intervalSec = strconv.FormatFloat(v.cfg.Batch.IntervalSeconds, 'f', -1, 64)
	v.pageSize = strconv.Itoa(v.cfg.UI.PageSize)
	v.logLimit = strconv.Itoa(v.cfg.Logs.DisplayLimit)
	v.saved = false
	v.errMsg = ""

	themeOptions := make([]huh.Option[string], 0)
	for _, name := range styles.ThemeNames() {
		themeOptions = append(themeOptions, huh.NewOption(name, name))
	}

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Value(&v.backendURL).
				Validate(requireValue("backend url")),
			huh.NewInput().
				Title("API Key").
				EchoMode(huh.EchoModePassword).
				Value(&v.apiKey),
			huh.NewInput().
				Title("TMDB Bearer Token").
				EchoMode(huh.EchoModePassword).
				Value(&v.tmdbToken),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Burst Size").
				Description("items dispatched per burst").
				Value(&v.burstSize).
				Validate(requirePositiveInt),
			huh.NewInput().
				Title("Burst Interval (seconds)").
				Description("measured from burst start").
				Value(&v.intervalSec).
				Validate(requirePositiveFloat),
			huh.NewInput().
				Title("Page Size").
				Value(&v.pageSize).
				Validate(requirePositiveInt),
			huh.NewInput().
				Title("Log Display Limit").
				Value(&v.logLimit).
				Validate(requirePositiveInt),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions...).
				Value(&v.theme),
		),
	).WithShowHelp(true)
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func requirePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func requirePositiveFloat(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func (v *settingsView) init() tea.Cmd {
	return v.form.Init()
}

// update runs the form and returns true once the edits were saved.
func (v *settingsView) update(msg tea.Msg) (savedNow bool, cmd tea.Cmd) {
	if v.form.State == huh.StateCompleted {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
			v.rebuild()
			return false, v.form.Init()
		}
		return false, nil
	}

	model, cmd := v.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		v.form = form
	}

	if v.form.State == huh.StateCompleted && !v.saved {
		v.apply()
		if err := v.cfg.Save(v.path); err != nil {
			v.errMsg = err.Error()
		} else {
			v.saved = true
			return true, cmd
		}
	}
	return false, cmd
}

func (v *settingsView) apply() {
	v.cfg.Backend.URL = v.backendURL
	v.cfg.Backend.APIKey = v.apiKey
	v.cfg.TMDB.BearerToken = v.tmdbToken
	v.cfg.UI.Theme = v.theme

	// Validated by the form.
	v.cfg.Batch.BurstSize, _ = strconv.Atoi(v.burstSize)
	v.cfg.Batch.IntervalSeconds, _ = strconv.ParseFloat(v.intervalSec, 64)
	v.cfg.UI.PageSize, _ = strconv.Atoi(v.pageSize)
	v.cfg.Logs.DisplayLimit, _ = strconv.Atoi(v.logLimit)

	if palette, ok := styles.GetPalette(v.theme); ok {
		styles.SetTheme(palette)
	}
}

func (v *settingsView) view() string {
	if v.errMsg != "" {
		return styles.TextErrorStyle.Render("save failed: "+v.errMsg) + "\n\n" + v.form.View()
	}
	if v.form.State == huh.StateCompleted {
		return styles.TextSuccessStyle.Render(styles.IconOK+" settings saved") + "\n" +
			styles.HelpStyle.Render("enter: edit again")
	}
	return v.form.View()
}
