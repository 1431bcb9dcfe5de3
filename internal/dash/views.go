package dash

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const swarmCanvasHeight = 16

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderMetricsPanel(),
		m.renderResourcePanel(),
		m.renderMonitoringPanel(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderSwarmPanel(),
		m.renderAlertsPanel(),
		m.renderTasksPanel(),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	if m.mode != modeView {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.styles.Muted.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.styles.Header.Render("HIVEBOARD")
	sub := m.styles.Label.Render(" " + m.cfg.APIBaseURL)
	return title + sub
}

// panelTitle renders a panel heading with the freshness badge for the
// poller that feeds it
func (m *Model) panelTitle(name string, hasData, stale bool, failures int) string {
	title := m.styles.PanelTitle.Render(name)
	switch {
	case failures > 0 && !hasData:
		return title + " " + m.styles.ErrBadge.Render("UNREACHABLE")
	case stale:
		return title + " " + m.styles.StaleBadge.Render("STALE")
	default:
		return title
	}
}

func (m *Model) renderMetricsPanel() string {
	p := m.hivePoller
	title := m.panelTitle("Swarm Metrics", p.hasData, p.stale(time.Now()), p.failures)
	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}

	metrics := p.data.Status.Metrics
	rate := SuccessRate(metrics.CompletedTasks, metrics.FailedTasks)

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(m.row("Agents", fmt.Sprintf("%d (%d active)", metrics.TotalAgents, metrics.ActiveAgents)))
	b.WriteString(m.row("Tasks done", fmt.Sprintf("%d (%d failed)", metrics.CompletedTasks, metrics.FailedTasks)))
	b.WriteString(m.row("Success rate", Percent(rate)))
	b.WriteString(m.row("Performance", Percent(metrics.AveragePerformance)))
	b.WriteString(m.row("Cohesion", Percent(metrics.SwarmCohesion)))
	b.WriteString(m.row("Learning", Percent(metrics.LearningProgress)))

	neural := CountNeural(p.data.Agents)
	b.WriteString(m.row("Neural", fmt.Sprintf("%d basic / %d advanced", neural.Basic, neural.Advanced)))
	b.WriteString(m.row("Total energy", fmt.Sprintf("%.0f", p.data.Status.TotalEnergy)))
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderResourcePanel() string {
	p := m.resPoller
	title := m.panelTitle("Resources", p.hasData, p.stale(time.Now()), p.failures)
	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}

	info := p.data
	sys := info.SystemResources

	cpuStyle := m.styles.usageStyle(UsageClassOf(sys.CPUUsage))
	memStyle := m.styles.usageStyle(UsageClassOf(sys.MemoryUsage))

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-13s", "CPU")) + cpuStyle.Render(Percent(sys.CPUUsage/100)) + "\n")
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-13s", "Memory")) + memStyle.Render(Percent(sys.MemoryUsage/100)) + "\n")
	b.WriteString(m.row("Cores", fmt.Sprintf("%d", sys.CPUCores)))
	b.WriteString(m.row("Available", Bytes(sys.AvailableMemory)))
	b.WriteString(m.row("Class", string(info.HardwareClass)))
	b.WriteString(m.row("Profile", info.ResourceProfile.ProfileName))
	b.WriteString(m.row("Max agents", fmt.Sprintf("%d", info.ResourceProfile.MaxAgents)))
	if len(sys.SIMDCapabilities) > 0 {
		b.WriteString(m.row("SIMD", strings.Join(sys.SIMDCapabilities, ", ")))
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderMonitoringPanel() string {
	p := m.monPoller
	title := m.panelTitle("Monitoring", p.hasData, p.stale(time.Now()), p.failures)
	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}

	snap := p.data
	cur := snap.Metrics.Current
	health := snap.Health

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-13s", "Health")) +
		m.styles.healthStyle(health.Status).Render(string(health.Status)) + "\n")
	b.WriteString(m.row("Uptime", formatUptime(health.UptimeSeconds)))
	b.WriteString(m.row("Throughput", fmt.Sprintf("%.1f req/s", cur.ThroughputTasks)))
	b.WriteString(m.row("Latency", fmt.Sprintf("%.1f ms", cur.LatencyMs)))
	b.WriteString(m.row("Error rate", Percent(cur.ErrorRate)))

	cpuHistory := make([]float64, len(snap.Metrics.History))
	for i, point := range snap.Metrics.History {
		cpuHistory[i] = point.CPUUsage
	}
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-13s", "CPU history")) +
		m.styles.OK.Render(sparkline(cpuHistory, 24)) + "\n")

	for name, status := range health.Components {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-13s", name)) +
			m.styles.healthStyle(status).Render(string(status)) + "\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderSwarmPanel() string {
	p := m.hivePoller
	title := m.panelTitle("Swarm", p.hasData, p.stale(time.Now()), p.failures)

	width := m.width/2 - 6
	if width < 20 {
		width = 20
	}
	view := NewSwarmView(width, swarmCanvasHeight, m.styles)

	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}
	return m.styles.Panel.Render(title + "\n" + view.Render(p.data.Agents, p.data.Status.SwarmCenter))
}

func (m *Model) renderAlertsPanel() string {
	p := m.monPoller
	title := m.panelTitle("Alerts", p.hasData, p.stale(time.Now()), p.failures)
	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}

	alerts := m.visibleAlerts()
	if len(alerts) == 0 {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("No active alerts"))
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	for i, alert := range alerts {
		line := fmt.Sprintf("[%s] %s", alert.Level, alert.Title)
		style := m.styles.alertStyle(alert.Level)
		if m.acked[alert.ID] {
			line += " (ack)"
			style = m.styles.AlertAcked
		}
		if i == m.selectedAlert {
			line = m.styles.AlertSelected.Render(line)
		} else {
			line = style.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderTasksPanel() string {
	p := m.hivePoller
	title := m.panelTitle("Tasks", p.hasData, p.stale(time.Now()), p.failures)
	if !p.hasData {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("Loading..."))
	}

	tasks := p.data.Tasks
	if len(tasks) == 0 {
		return m.styles.Panel.Render(title + "\n" + m.styles.Muted.Render("No tasks"))
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	shown := tasks
	if len(shown) > 8 {
		shown = shown[len(shown)-8:]
	}
	for _, t := range shown {
		bucket := t.Priority.Bucket()
		var style lipgloss.Style
		switch bucket {
		case "critical":
			style = m.styles.Critical
		case "high":
			style = m.styles.Warning
		default:
			style = m.styles.Value
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			style.Render(fmt.Sprintf("[%s]", bucket)),
			m.styles.Value.Render(truncate(t.Description, 32)),
			m.styles.Label.Render(string(t.Status))))
	}
	if hidden := len(tasks) - len(shown); hidden > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("... and %d more", hidden)) + "\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderForm() string {
	title := "New agent"
	if m.mode == modeNewTask {
		title = "New task"
	}
	var b strings.Builder
	b.WriteString(m.styles.PanelTitle.Render(title) + "\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View() + "\n")
	}
	b.WriteString(m.styles.Muted.Render("enter next/submit | esc cancel"))
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderHelpBar() string {
	entries := [][2]string{
		{"n", "new agent"},
		{"t", "new task"},
		{"a", "ack alert"},
		{"j/k", "select alert"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = m.styles.HelpKey.Render(e[0]) + " " + m.styles.HelpDesc.Render(e[1])
	}
	return strings.Join(parts, "  |  ")
}

func (m *Model) row(label, value string) string {
	return m.styles.Label.Render(fmt.Sprintf("%-13s", label)) + m.styles.Value.Render(value) + "\n"
}

// sparkline compresses a value series into a fixed-width bar string.
// Values are scaled against the series maximum.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func formatUptime(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
