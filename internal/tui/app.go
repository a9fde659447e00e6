// Package tui is the chat front end. It is the only layer that turns typed
// views into text, and the only layer that builds actions from user input.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/dispatch"
	"github.com/sadopc/steward/internal/export"
	"github.com/sadopc/steward/internal/store"
)

// Digest messages are sent into the program by the scheduler.
type DailyMsg struct{ Payload *digest.Daily }
type EveningMsg struct{ Payload *digest.Evening }
type WeeklyMsg struct{ Payload *digest.Weekly }
type MonthlyMsg struct{ Payload *digest.Monthly }

type viewMsg struct{ view dispatch.View }

// App is the root Bubble Tea model.
type App struct {
	dispatcher *dispatch.Dispatcher
	// called after a settings save so the scheduler can pick up new times
	onSettingsSaved func()

	width  int
	height int
	ready  bool

	transcript []string
	vp         viewport.Model
	input      textinput.Model
	help       help.Model
	showHelp   bool

	// options offered by the last dialog prompt, chosen by number
	options []dialog.Option

	formActive bool
	wantForm   bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	fDailyTime   *string
	fEveningTime *string
	fTimezone    *string
	fDailyOn     *bool
	fEveningOn   *bool
}

func NewApp(d *dispatch.Dispatcher, onSettingsSaved func()) App {
	ti := textinput.New()
	ti.Placeholder = "type a command (/help) or answer the prompt"
	ti.Focus()

	h := help.New()
	h.ShowAll = false

	dt, et, tz := "", "", ""
	don, eon := false, false

	return App{
		dispatcher:      d,
		onSettingsSaved: onSettingsSaved,
		input:           ti,
		help:            h,
		fDailyTime:      &dt,
		fEveningTime:    &et,
		fTimezone:       &tz,
		fDailyOn:        &don,
		fEveningOn:      &eon,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.send(dispatch.Do{Action: dispatch.ShowDashboard{}}))
}

// send runs one event through the dispatcher off the update loop.
func (a App) send(ev dispatch.Event) tea.Cmd {
	return func() tea.Msg {
		return viewMsg{view: a.dispatcher.Handle(ev)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.input.Width = msg.Width - 6
		vpHeight := a.height - 6 // header, input box, footer
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !a.ready {
			a.vp = viewport.New(msg.Width, vpHeight)
			a.ready = true
		} else {
			a.vp.Width = msg.Width
			a.vp.Height = vpHeight
		}
		a.refreshTranscript()
		return a, nil

	case tea.KeyMsg:
		if a.formActive {
			return a.updateForm(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Cancel):
			if len(a.options) > 0 {
				a.options = nil
				return a, a.send(dispatch.Choose{Option: dialog.Option{Kind: dialog.OptionCancel}})
			}
			return a, nil
		case key.Matches(msg, keys.Settings):
			a.wantForm = true
			return a, a.send(dispatch.Do{Action: dispatch.ShowSettings{}})
		case key.Matches(msg, keys.Export):
			return a, a.send(dispatch.Do{Action: dispatch.ExportWorkspace{Format: export.FormatJSON}})
		case key.Matches(msg, keys.Send):
			return a.submit()
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			a.vp, cmd = a.vp.Update(msg)
			return a, cmd
		}

		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case viewMsg:
		return a.applyView(msg.view)

	case DailyMsg:
		a.pushDigest(renderDaily(msg.Payload))
		return a, nil
	case EveningMsg:
		a.pushDigest(renderEvening(msg.Payload))
		return a, nil
	case WeeklyMsg:
		a.pushDigest(renderWeekly(msg.Payload, a.width))
		return a, nil
	case MonthlyMsg:
		a.pushDigest(renderMonthly(msg.Payload))
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit interprets the entered line: slash command, numbered option choice,
// or free text for the active dialog.
func (a App) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return a, nil
	}
	a.input.SetValue("")
	a.push(userMsgStyle.Render("> " + text))

	if strings.HasPrefix(text, "/") {
		if strings.ToLower(text) == "/help" {
			a.push(mutedStyle.Render(helpText))
			return a, nil
		}
		action, err := parseCommand(text)
		if err != nil {
			a.push(errorStyle.Render(err.Error()))
			return a, nil
		}
		a.options = nil
		return a, a.send(dispatch.Do{Action: action})
	}

	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(a.options) {
		opt := a.options[n-1]
		a.options = nil
		return a, a.send(dispatch.Choose{Option: opt})
	}

	return a, a.send(dispatch.FreeText{Text: text})
}

func (a App) applyView(v dispatch.View) (tea.Model, tea.Cmd) {
	// ctrl+s asked for the settings form rather than the printed view
	if sv, ok := v.(dispatch.SettingsView); ok && a.wantForm {
		a.wantForm = false
		return a.showSettingsForm(sv.Settings)
	}

	if dv, ok := v.(dispatch.DialogView); ok {
		a.options = dv.Prompt.Options
	} else {
		a.options = nil
	}

	a.push(botMsgStyle.Render(renderView(v, a.width)))
	return a, nil
}

func (a *App) push(line string) {
	a.transcript = append(a.transcript, line)
	a.refreshTranscript()
}

func (a *App) pushDigest(body string) {
	a.transcript = append(a.transcript, digestMsgStyle.Render(body))
	a.refreshTranscript()
}

func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	a.vp.SetContent(strings.Join(a.transcript, "\n\n"))
	a.vp.GotoBottom()
}

// --- settings form ---

func (a App) showSettingsForm(s store.Settings) (tea.Model, tea.Cmd) {
	*a.fDailyTime = s.DailySummaryTime
	*a.fEveningTime = s.EveningReminderTime
	*a.fTimezone = s.Timezone
	*a.fDailyOn = s.DailySummaryEnabled
	*a.fEveningOn = s.EveningReminderEnabled

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Daily summary").Value(a.fDailyOn),
			huh.NewInput().Title("Daily summary time (HH:MM)").
				Value(a.fDailyTime).Validate(validClock),
			huh.NewConfirm().Title("Evening reminder").Value(a.fEveningOn),
			huh.NewInput().Title("Evening reminder time (HH:MM)").
				Value(a.fEveningTime).Validate(validClock),
			huh.NewInput().Title("Timezone").
				Value(a.fTimezone).Validate(validTimezone),
		).Title("Digests"),
	).WithShowHelp(true).WithShowErrors(true)

	a.formActive = true
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		settings := store.Settings{
			DailySummaryTime:       *a.fDailyTime,
			EveningReminderTime:    *a.fEveningTime,
			Timezone:               *a.fTimezone,
			DailySummaryEnabled:    *a.fDailyOn,
			EveningReminderEnabled: *a.fEveningOn,
		}
		a.form = nil
		return a, a.saveSettings(settings)
	}

	return a, cmd
}

func (a App) saveSettings(s store.Settings) tea.Cmd {
	return func() tea.Msg {
		v := a.dispatcher.Handle(dispatch.Do{Action: dispatch.SaveSettings{Settings: s}})
		if a.onSettingsSaved != nil {
			a.onSettingsSaved()
		}
		return viewMsg{view: v}
	}
}

func validClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

func validTimezone(s string) error {
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone")
	}
	return nil
}

// --- rendering ---

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.formActive && a.form != nil {
		title := titleStyle.Render("Settings")
		return lipgloss.JoinVertical(lipgloss.Left, title, "", a.form.View())
	}

	header := headerStyle.Render(
		lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("steward"),
	)
	inputBox := inputStyle.Width(a.width - 4).Render(a.input.View())
	footer := footerStyle.Render(a.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, header, a.vp.View(), inputBox, footer)
}
