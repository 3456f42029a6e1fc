// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/session"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
	"github.com/verte-zerg/tuitrack/internal/timer"
)

// TickMsg asks the view to refresh after an engine heartbeat.
type TickMsg struct{}

type mode int

const (
	modeTimer mode = iota
	modePicker
	modeNotes
	modeRecovery
	modeConfirmReset
)

// pickPurpose is what happens with the task chosen in the picker.
type pickPurpose int

const (
	pickStart pickPurpose = iota
	pickAssign
	pickSave
)

var (
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	modalStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Deps are the collaborators of the timer screen.
type Deps struct {
	Engine *timer.Engine
	Saver  *session.Saver
	Log    *session.Log
	Tasks  []model.Task
	Index  *analytics.Index
	Logger *slog.Logger
	Now    func() time.Time
}

// Model implements the Bubble Tea timer UI.
type Model struct {
	engine *timer.Engine
	saver  *session.Saver
	log    *session.Log
	index  *analytics.Index
	logger *slog.Logger
	now    func() time.Time

	width  int
	height int

	mode    mode
	purpose pickPurpose
	picker  table.Model
	taskIDs []string
	notes   textinput.Model

	status    string
	statusErr bool
}

// NewModel constructs the timer UI. A pending recovery opens the decision
// dialog immediately.
func NewModel(deps Deps) *Model {
	m := &Model{
		engine: deps.Engine,
		saver:  deps.Saver,
		log:    deps.Log,
		index:  deps.Index,
		logger: deps.Logger,
		now:    deps.Now,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.picker, m.taskIDs = buildPicker(deps.Tasks, deps.Index)
	m.notes = textinput.New()
	m.notes.Prompt = "Notes: "
	m.notes.Placeholder = "optional"
	m.notes.CharLimit = 500
	if m.engine.State() == timer.NeedsRecoveryDecision {
		m.mode = modeRecovery
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetWidth(maxInt(20, m.width-4))
		m.picker.SetHeight(maxInt(3, minInt(len(m.taskIDs)+1, m.height-8)))
		m.notes.Width = maxInt(10, m.width-lipgloss.Width(m.notes.Prompt)-4)
		return m, nil
	case TickMsg:
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeRecovery:
			return m.updateRecovery(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeNotes:
			return m.updateNotes(msg)
		case modeConfirmReset:
			return m.updateConfirmReset(msg)
		default:
			return m.updateTimer(msg)
		}
	}
	return m, nil
}

func (m *Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ":
		m.toggle()
	case "n":
		if m.engine.State() != timer.Idle {
			m.setStatus("A session is already active.", true)
			return m, nil
		}
		return m.openPicker(pickStart)
	case "t":
		if _, ok := m.engine.CurrentTask(); !ok {
			m.setStatus("No active session.", true)
			return m, nil
		}
		return m.openPicker(pickAssign)
	case "enter", "s":
		info, ok := m.engine.CurrentTask()
		if !ok {
			m.setStatus("No active session.", true)
			return m, nil
		}
		if !info.Task.IsAssigned() {
			return m.openPicker(pickSave)
		}
		return m.openNotes()
	case "x":
		if _, ok := m.engine.CurrentTask(); ok {
			m.mode = modeConfirmReset
		}
	}
	return m, nil
}

func (m *Model) toggle() {
	var err error
	switch m.engine.State() {
	case timer.Idle:
		err = m.engine.Start(model.Unassigned())
		m.setStatus("Timer started.", false)
	case timer.Running:
		err = m.engine.Pause()
		m.setStatus("Paused.", false)
	case timer.Paused:
		err = m.engine.Resume()
		m.setStatus("Resumed.", false)
	}
	if err != nil {
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) updateRecovery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var d timer.Decision
	switch msg.String() {
	case "u":
		d = timer.UntilClose
	case "f":
		d = timer.FullTime
	case "q":
		return m, tea.Quit
	default:
		return m, nil
	}
	m.mode = modeTimer
	if err := m.engine.ApplyRecoveryDecision(d); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Recovered (%s). Press space to resume.", d), false)
	return m, nil
}

func (m *Model) openPicker(purpose pickPurpose) (tea.Model, tea.Cmd) {
	if len(m.taskIDs) == 0 {
		m.setStatus("No tasks yet. Create one with `tuitrack task add`.", true)
		return m, nil
	}
	m.purpose = purpose
	m.mode = modePicker
	m.picker.Focus()
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeTimer
		m.picker.Blur()
		return m, nil
	case "enter":
		m.mode = modeTimer
		m.picker.Blur()
		idx := m.picker.Cursor()
		if idx < 0 || idx >= len(m.taskIDs) {
			return m, nil
		}
		return m.applyPick(m.taskIDs[idx])
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) applyPick(taskID string) (tea.Model, tea.Cmd) {
	name, _, _ := m.index.Names(taskID)
	switch m.purpose {
	case pickStart:
		if err := m.engine.Start(model.Assigned(taskID)); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Tracking "+name+".", false)
	case pickAssign, pickSave:
		if err := m.engine.AssignTask(taskID); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Assigned to "+name+".", false)
		if m.purpose == pickSave {
			return m.openNotes()
		}
	}
	return m, nil
}

func (m *Model) openNotes() (tea.Model, tea.Cmd) {
	m.mode = modeNotes
	m.notes.Reset()
	return m, m.notes.Focus()
}

func (m *Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeTimer
		m.notes.Blur()
		return m, nil
	case "enter":
		m.mode = modeTimer
		m.notes.Blur()
		m.save(strings.TrimSpace(m.notes.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m *Model) save(notes string) {
	saved, err := m.saver.Save(context.Background(), notes)
	switch {
	case errors.Is(err, session.ErrTooShort):
		m.setStatus("Session too short to save.", true)
	case err != nil:
		m.setStatus(err.Error(), true)
	default:
		m.setStatus("Saved "+timefmt.FormatDuration(saved.Duration)+".", false)
	}
}

func (m *Model) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeTimer
	if msg.String() != "y" {
		m.setStatus("Reset cancelled.", false)
		return m, nil
	}
	if err := m.engine.Reset(); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("Session discarded.", false)
	return m, nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
	if isErr {
		m.logger.Debug("timer ui", "status", msg)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeRecovery:
		body = m.renderRecovery()
	case modePicker:
		body = m.renderPicker()
	default:
		body = m.renderTimer()
	}
	if m.width == 0 || m.height < 3 {
		return body
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return main + "\n" + footer
}

func (m *Model) renderTimer() string {
	info, ok := m.engine.CurrentTask()
	lines := []string{}
	if !ok {
		lines = append(lines,
			clockStyle.Render("00:00:00"),
			mutedStyle.Render("Idle"),
			"",
			mutedStyle.Render("space: start  n: start on task  q: quit"),
		)
	} else {
		label := "Unnamed session"
		if id, assigned := info.Task.ID(); assigned {
			task, project, client := m.index.Names(id)
			label = fmt.Sprintf("%s · %s · %s", task, project, client)
		}
		state := runningStyle.Render("Running")
		if info.State == timer.Paused {
			state = pausedStyle.Render("Paused")
		}
		lines = append(lines,
			clockStyle.Render(formatClock(info.Elapsed)),
			state+"  "+mutedStyle.Render(label),
			"",
			mutedStyle.Render("space: pause/resume  t: task  enter: save  x: discard  q: quit"),
		)
	}
	switch m.mode {
	case modeNotes:
		lines = append(lines, "", m.notes.View())
	case modeConfirmReset:
		lines = append(lines, "", errorStyle.Render("Discard this session? (y/N)"))
	}
	if m.status != "" {
		style := mutedStyle
		if m.statusErr {
			style = errorStyle
		}
		lines = append(lines, "", style.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderRecovery() string {
	rec, ok := m.engine.PendingRecovery()
	if !ok {
		return ""
	}
	content := strings.Join([]string{
		"The timer was interrupted.",
		fmt.Sprintf("Last heartbeat %s ago (%s).", rec.Gap.Round(time.Second), rec.Session.LastTick.Local().Format("15:04")),
		"",
		fmt.Sprintf("u: count until close  %s", formatClock(rec.TimeUntilClose)),
		fmt.Sprintf("f: count full time    %s", formatClock(rec.TimeTotal)),
	}, "\n")
	return modalStyle.Render(content)
}

func (m *Model) renderPicker() string {
	title := "Choose a task (enter: select, esc: cancel)"
	return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(title), m.picker.View())
}

func (m *Model) renderFooter() string {
	if m.log == nil {
		return ""
	}
	sessions := m.log.All()
	now := m.now()
	today := analytics.PeriodMetrics(sessions, model.PeriodToday, now, model.Range{})
	streak := analytics.GlobalStreak(sessions, now)
	segments := []string{
		fmt.Sprintf("Hoy %s", today[0].Display),
		fmt.Sprintf("Esta semana %s", today[2].Display),
		fmt.Sprintf("Racha %d días", streak.Current),
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

// formatClock renders elapsed seconds, falling back to hours past a day.
func formatClock(seconds int64) string {
	if s := timefmt.FormatClock(seconds); s != "" {
		return s
	}
	return timefmt.FormatHours(timefmt.Hours(seconds))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
