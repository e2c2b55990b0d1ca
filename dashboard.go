package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fetchPhase int

const (
	phaseIdle fetchPhase = iota
	phaseLoading
	phaseReady
	phaseFailed
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			MarginBottom(1)

	goalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	selectedCellStyle = lipgloss.NewStyle().Reverse(true)

	// Five intensity bands, darkest to brightest (counts 0,1,2,3,>=4).
	heatStyles = [maxHeatLevel + 1]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#2D333B")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#0E4429")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#006D32")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#26A641")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#39D353")),
	}
)

// Fetch results carry the sequence number of the request that produced them;
// Update drops anything from a superseded request so a slow stale response
// never overwrites newer state.
type authMsg struct {
	seq int
	err error
}

type countsMsg struct {
	seq    int
	counts map[time.Time]int
	err    error
}

type detailsMsg struct {
	seq     int
	details map[time.Time][]WorkoutRecord
	err     error
}

type dayTickMsg time.Time

func dayTickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return dayTickMsg(t)
	})
}

type dashboardModel struct {
	source       workoutSource
	snapshotPath string
	pidPath      string
	windowDays   int

	today    time.Time
	phase    fetchPhase
	fetchSeq int
	fetchErr error
	counts   map[time.Time]int
	details  map[time.Time][]WorkoutRecord
	goal     *time.Time
	selected *time.Time

	editingGoal bool
	goalInput   textinput.Model
	goalErr     string

	width  int
	height int
}

func newDashboardModel(source workoutSource, snapshotPath, pidPath string, windowDays int, now time.Time) dashboardModel {
	input := textinput.New()
	input.Placeholder = "YYYY-MM-DD"
	input.CharLimit = 10
	input.Width = 12

	goal, _ := loadSnapshot(snapshotPath)
	return dashboardModel{
		source:       source,
		snapshotPath: snapshotPath,
		pidPath:      pidPath,
		windowDays:   windowDays,
		today:        dayOf(now),
		// The first fetch cycle starts immediately; Init only returns
		// commands, so its sequence number is seeded here.
		phase:     phaseLoading,
		fetchSeq:  1,
		counts:    map[time.Time]int{},
		details:   map[time.Time][]WorkoutRecord{},
		goal:      goal,
		goalInput: input,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.authCmd(m.fetchSeq), dayTickCmd())
}

// refresh starts a new fetch cycle, superseding any outstanding one.
func (m dashboardModel) refresh() (dashboardModel, tea.Cmd) {
	m.fetchSeq++
	m.phase = phaseLoading
	return m, m.authCmd(m.fetchSeq)
}

func (m dashboardModel) authCmd(seq int) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		return authMsg{seq: seq, err: source.Authorize(context.Background())}
	}
}

func (m dashboardModel) countsCmd(seq int, start, end time.Time) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		counts, err := source.Workouts(context.Background(), start, end)
		return countsMsg{seq: seq, counts: counts, err: err}
	}
}

func (m dashboardModel) detailsCmd(seq int, start, end time.Time) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		details, err := source.WorkoutDetails(context.Background(), start, end)
		return detailsMsg{seq: seq, details: details, err: err}
	}
}

// publishCmd pushes the current goal and counts into the shared snapshot and
// pokes the widget. The write is not awaited by anything; a failure only
// means the widget keeps showing the previous snapshot.
func (m dashboardModel) publishCmd() tea.Cmd {
	goal := m.goal
	counts := m.counts
	snapshotPath := m.snapshotPath
	pidPath := m.pidPath
	return func() tea.Msg {
		if err := publishSnapshot(snapshotPath, goal, counts); err == nil {
			signalWidgetReload(pidPath)
		}
		return nil
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editingGoal {
			return m.updateGoalInput(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case authMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseFailed
			m.fetchErr = msg.err
			return m, nil
		}
		start, end := fetchWindow(m.today, m.windowDays)
		return m, tea.Batch(m.countsCmd(msg.seq, start, end), m.detailsCmd(msg.seq, start, end))

	case countsMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseFailed
			m.fetchErr = msg.err
			return m, nil
		}
		m.counts = msg.counts
		if m.phase != phaseFailed {
			m.phase = phaseReady
			m.fetchErr = nil
		}
		return m, m.publishCmd()

	case detailsMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseFailed
			m.fetchErr = msg.err
			return m, nil
		}
		m.details = msg.details
		if m.phase != phaseFailed {
			m.phase = phaseReady
		}
		return m, nil

	case dayTickMsg:
		if day := dayOf(time.Time(msg)); !day.Equal(m.today) {
			m.today = day
			m.selected = nil
			next, cmd := m.refresh()
			return next, tea.Batch(cmd, dayTickCmd())
		}
		return m, dayTickCmd()
	}
	return m, nil
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.selected != nil {
			m.selected = nil
			return m, nil
		}
		return m, tea.Quit

	case "r":
		next, cmd := m.refresh()
		return next, cmd

	case "g":
		m.editingGoal = true
		m.goalErr = ""
		m.goalInput.Reset()
		if m.goal != nil {
			m.goalInput.SetValue(dayKey(*m.goal))
		}
		m.goalInput.Focus()
		return m, m.goalInput.Cursor.BlinkCmd()

	case "x":
		if m.goal == nil {
			return m, nil
		}
		m.goal = nil
		return m, m.publishCmd()

	case "left", "h":
		return m.moveSelection(-1), nil

	case "right", "l":
		return m.moveSelection(1), nil

	case "up", "k":
		return m.moveSelection(-7), nil

	case "down", "j":
		return m.moveSelection(7), nil

	case "enter":
		day := m.today
		m.selected = &day
		return m, nil
	}
	return m, nil
}

// moveSelection shifts the detail selection by delta days, clamped to the
// visible window. With nothing selected, any movement starts at today.
func (m dashboardModel) moveSelection(delta int) dashboardModel {
	windowStart := m.today.AddDate(0, 0, -(m.windowDays - 1))
	day := m.today
	if m.selected != nil {
		day = m.selected.AddDate(0, 0, delta)
	}
	if day.Before(windowStart) {
		day = windowStart
	}
	if day.After(m.today) {
		day = m.today
	}
	m.selected = &day
	return m
}

func (m dashboardModel) updateGoalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		day, err := parseDayKey(strings.TrimSpace(m.goalInput.Value()))
		if err != nil {
			m.goalErr = "use YYYY-MM-DD"
			return m, nil
		}
		m.goal = &day
		m.editingGoal = false
		m.goalErr = ""
		m.goalInput.Blur()
		return m, m.publishCmd()
	case "esc":
		m.editingGoal = false
		m.goalErr = ""
		m.goalInput.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.goalInput, cmd = m.goalInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := headerStyle.Width(m.width).Render(
		fmt.Sprintf("🏋️ Workout Calendar - %s", m.today.Format("Jan 2, 2006")),
	)

	grid := buildGrid(m.today, m.windowDays, func(day time.Time) int {
		return m.counts[day]
	})
	calendarBox := boxStyle.Render(renderHeatmap(grid, m.selected))

	rightColumn := lipgloss.JoinVertical(lipgloss.Left,
		m.countdownBox(),
		m.detailsBox(),
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top, calendarBox, " ", rightColumn)

	footer := dimStyle.Width(m.width).Render(
		"arrows select day • g goal • x remove goal • r refresh • q quit",
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, m.statusLine(), footer)
}

func (m dashboardModel) statusLine() string {
	switch m.phase {
	case phaseLoading:
		return goalStyle.Render("⏳ Fetching workouts...")
	case phaseFailed:
		reason := "fetch failed"
		if m.fetchErr != nil {
			reason = m.fetchErr.Error()
		}
		return failStyle.Render("⚠ "+reason) + dimStyle.Render("  (press r to retry)")
	case phaseReady:
		total := 0
		for _, n := range m.counts {
			total += n
		}
		return okStyle.Render(fmt.Sprintf("✓ %d workouts in the last %d days", total, m.windowDays))
	default:
		return ""
	}
}

func (m dashboardModel) countdownBox() string {
	if m.editingGoal {
		body := fmt.Sprintf("🎯 GOAL DATE\n\n%s", m.goalInput.View())
		if m.goalErr != "" {
			body += "\n" + failStyle.Render(m.goalErr)
		}
		body += "\n" + dimStyle.Render("enter save · esc cancel")
		return boxStyle.Render(body)
	}
	if m.goal == nil {
		return boxStyle.Render("🎯 GOAL\n\n" + dimStyle.Render("No goal set. Press g."))
	}
	remaining := daysRemaining(m.goal, m.today)
	return boxStyle.Render(fmt.Sprintf(
		"🎯 GOAL: %s\n\n%s",
		m.goal.Format("Jan 2, 2006"),
		goalStyle.Render(fmt.Sprintf("%d days remaining", *remaining)),
	))
}

func (m dashboardModel) detailsBox() string {
	if m.selected == nil {
		return boxStyle.Render("📋 DETAILS\n\n" + dimStyle.Render("Select a day with the arrows."))
	}
	day := *m.selected
	lines := []string{fmt.Sprintf("📋 %s", day.Format("Mon, Jan 2"))}
	records := m.details[day]
	if len(records) == 0 {
		lines = append(lines, "", dimStyle.Render("No workouts."))
	} else {
		lines = append(lines, "")
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("%s %s — %s · %.0f kcal",
				r.Start.Format("15:04"),
				r.Activity,
				humanDuration(int(r.DurationSeconds/60)),
				r.EnergyKcal,
			))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

var weekdayRowNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// renderHeatmap draws the contribution calendar: a sparse month-label row on
// top, then one row per weekday with a two-column cell per week.
func renderHeatmap(grid CalendarGrid, selected *time.Time) string {
	var b strings.Builder

	b.WriteString("    ")
	for _, label := range grid.MonthLabels() {
		b.WriteString(fmt.Sprintf("%-3.3s", label))
	}
	b.WriteString("\n")

	for row := 0; row < 7; row++ {
		b.WriteString(fmt.Sprintf("%-4s", weekdayRowNames[row]))
		for _, week := range grid.Weeks {
			cell := week[row]
			if cell.Pad {
				b.WriteString("   ")
				continue
			}
			style := heatStyles[heatLevel(cell.Count)]
			if selected != nil && cell.Day.Equal(*selected) {
				style = selectedCellStyle
			}
			b.WriteString(style.Render("██") + " ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + dimStyle.Render("less "))
	for _, style := range heatStyles {
		b.WriteString(style.Render("██") + " ")
	}
	b.WriteString(dimStyle.Render("more"))
	return b.String()
}

func humanDuration(mins int) string {
	h := mins / 60
	m := mins % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%d hr %d min", h, m)
	case h == 1:
		return "1 hr"
	case h > 0:
		return fmt.Sprintf("%d hrs", h)
	case m == 1:
		return "1 min"
	default:
		return fmt.Sprintf("%d min", m)
	}
}
