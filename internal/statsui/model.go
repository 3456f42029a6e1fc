// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/stats"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

const (
	tabOverview = iota
	tabDistribution
	tabHeatmap
	tabRecent
)

const plotHeight = 8

// periodCycle is the order "p" steps through.
var periodCycle = []model.Period{model.PeriodToday, model.PeriodWeek, model.PeriodMonth, model.PeriodYear}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	// heatColors are the cell colors of levels 0..4.
	heatColors = []lipgloss.Color{"#2A2A2A", "#0E4429", "#006D32", "#26A641", "#39D353"}
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src stats.Source
	cfg model.StatsConfig
	now func() time.Time

	data   stats.Data
	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	recent    table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src stats.Source, cfg model.StatsConfig, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	if cfg.Period == "" {
		cfg.Period = model.PeriodWeek
	}
	if cfg.Year == 0 {
		cfg.Year = now().Year()
	}
	m := &Model{
		src:  src,
		cfg:  cfg,
		now:  now,
		tabs: []string{"Resumen", "Distribución", "Calendario", "Recientes"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.recent = table.New(table.WithColumns(recentColumns()), table.WithFocused(true))
	m.reload()
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "p":
			m.cfg.Period = nextPeriod(m.cfg.Period)
			m.cfg.From, m.cfg.To = nil, nil
			m.recompute()
			return m, nil
		case "[":
			m.cfg.Year--
			m.renderTabContents()
			return m, nil
		case "]":
			m.cfg.Year++
			m.renderTabContents()
			return m, nil
		case "r":
			m.reload()
			return m, nil
		}
		if m.activeTab == tabRecent {
			var cmd tea.Cmd
			m.recent, cmd = m.recent.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.recent.SetWidth(m.width)
	m.recent.SetHeight(max(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
}

// reload reads fresh data from the source and recomputes the report.
func (m *Model) reload() {
	data, err := stats.Load(context.Background(), m.src)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.data = data
	m.recompute()
}

func (m *Model) recompute() {
	if m.errMsg != "" {
		return
	}
	m.report = stats.Compute(m.data, m.cfg, m.now())
	m.recent.SetRows(recentRows(m.report.Recent))
	m.recent.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabDistribution].SetContent(renderDistribution(m.report.Distribution))
	days := analytics.Heatmap(m.data.Sessions, m.cfg.Year, m.now().Location())
	m.viewports[tabHeatmap].SetContent(renderHeatmap(m.cfg.Year, days))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	summary := fmt.Sprintf("Periodo: %s  %s – %s  Año: %d",
		m.report.Period,
		m.report.From.Format(time.DateOnly),
		m.report.To.Format(time.DateOnly),
		m.cfg.Year)
	return tabs + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabRecent {
		if len(m.report.Recent) == 0 {
			return "No sessions found."
		}
		return m.recent.View()
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Period: p  Year: [ ]  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func nextPeriod(p model.Period) model.Period {
	for i, candidate := range periodCycle {
		if candidate == p {
			return periodCycle[(i+1)%len(periodCycle)]
		}
	}
	return periodCycle[0]
}

func renderOverview(r stats.Report, width int) string {
	cards := make([]string, 0, len(r.Metrics)+1)
	for _, metric := range r.Metrics {
		cards = append(cards, metricCard(metric.Label, metric.Display))
	}
	cards = append(cards, metricCard("Racha", fmt.Sprintf("%d / %d días", r.Streak.Current, r.Streak.Best)))
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var buf bytes.Buffer
	if err := stats.RenderInsights(&buf, r.Insights); err != nil {
		return fmt.Sprintf("Failed to render insights: %v", err)
	}
	if len(r.Daily) > 1 {
		values := analytics.Values(r.Daily)
		err := stats.PlotHours(&buf, "Horas por día", []stats.Series{
			{Name: "Horas", Values: values},
			{Name: "Media 7 días", Values: stats.MovingAverage(values, 7)},
		}, stats.PlotWidthFor(width, 4), plotHeight, true)
		if err != nil {
			return fmt.Sprintf("Failed to render curve: %v", err)
		}
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDistribution(d analytics.Distribution) string {
	var buf bytes.Buffer
	if err := stats.RenderDistribution(&buf, d); err != nil {
		return fmt.Sprintf("Failed to render distribution: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderHeatmap draws the calendar with colored cells, one column per week.
func renderHeatmap(year int, days []analytics.HeatmapDay) string {
	var total float64
	for _, d := range days {
		total += d.Hours
	}
	var rows [7]strings.Builder
	if len(days) > 0 {
		lead := (int(days[0].Date.Weekday()) + 6) % 7
		for i := 0; i < lead; i++ {
			rows[i].WriteString("  ")
		}
	}
	for _, d := range days {
		cell := lipgloss.NewStyle().Foreground(heatColors[d.Level]).Render("■")
		rows[(int(d.Date.Weekday())+6)%7].WriteString(cell + " ")
	}
	labels := []string{"L", "M", "X", "J", "V", "S", "D"}
	lines := []string{fmt.Sprintf("Actividad %d: %s", year, timefmt.FormatHours(total)), ""}
	for i := range rows {
		lines = append(lines, labels[i]+" "+rows[i].String())
	}
	legend := make([]string, len(heatColors))
	for i, c := range heatColors {
		legend[i] = lipgloss.NewStyle().Foreground(c).Render("■")
	}
	lines = append(lines, "", "0h "+strings.Join(legend, " ")+" 6h+")
	return strings.Join(lines, "\n")
}

func recentColumns() []table.Column {
	return []table.Column{
		{Title: "Inicio", Width: 16},
		{Title: "Duración", Width: 10},
		{Title: "Tarea", Width: 22},
		{Title: "Proyecto", Width: 18},
		{Title: "Cliente", Width: 16},
		{Title: "Notas", Width: 24},
	}
}

func recentRows(recent []analytics.RecentSession) []table.Row {
	rows := make([]table.Row, 0, len(recent))
	for _, r := range recent {
		rows = append(rows, table.Row{
			r.StartTime.Local().Format("2006-01-02 15:04"),
			timefmt.FormatDuration(r.Duration),
			r.TaskName,
			r.ProjectName,
			r.ClientName,
			r.Notes,
		})
	}
	return rows
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
