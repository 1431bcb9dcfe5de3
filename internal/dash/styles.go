package dash

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// Colors - Forest green dark theme
var (
	primaryColor   = lipgloss.Color("#4ade80") // Bright forest green
	secondaryColor = lipgloss.Color("#6b7b6b") // Gray-green
	successColor   = lipgloss.Color("#22c55e") // Green
	errorColor     = lipgloss.Color("#ef4444") // Red
	warningColor   = lipgloss.Color("#eab308") // Amber
	accentColor    = lipgloss.Color("#2dd4bf") // Teal
	learnerColor   = lipgloss.Color("#a78bfa") // Violet
	dimColor       = lipgloss.Color("#3f4a3f") // Faint gray-green
)

// Styles defines all the visual styles for the dashboard
type Styles struct {
	Header     lipgloss.Style
	PanelTitle lipgloss.Style
	Panel      lipgloss.Style

	Label lipgloss.Style
	Value lipgloss.Style
	Muted lipgloss.Style

	OK       lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style

	StaleBadge lipgloss.Style
	ErrBadge   lipgloss.Style

	AlertInfo     lipgloss.Style
	AlertWarning  lipgloss.Style
	AlertCritical lipgloss.Style
	AlertAcked    lipgloss.Style
	AlertSelected lipgloss.Style

	Grid         lipgloss.Style
	CenterMarker lipgloss.Style
	EnergyRing   lipgloss.Style
	AgentLabel   lipgloss.Style

	InputPrompt lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style
}

// DefaultStyles returns the default dashboard styling
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true),
		PanelTitle: lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1),

		Label: lipgloss.NewStyle().Foreground(secondaryColor),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("#e5e7eb")),
		Muted: lipgloss.NewStyle().Foreground(dimColor),

		OK:       lipgloss.NewStyle().Foreground(successColor),
		Warning:  lipgloss.NewStyle().Foreground(warningColor),
		Critical: lipgloss.NewStyle().Foreground(errorColor).Bold(true),

		StaleBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f1410")).
			Background(warningColor).
			Bold(true).
			Padding(0, 1),
		ErrBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f1410")).
			Background(errorColor).
			Bold(true).
			Padding(0, 1),

		AlertInfo:     lipgloss.NewStyle().Foreground(accentColor),
		AlertWarning:  lipgloss.NewStyle().Foreground(warningColor),
		AlertCritical: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		AlertAcked:    lipgloss.NewStyle().Foreground(dimColor),
		AlertSelected: lipgloss.NewStyle().Bold(true).Underline(true),

		Grid:         lipgloss.NewStyle().Foreground(dimColor),
		CenterMarker: lipgloss.NewStyle().Foreground(primaryColor).Bold(true),
		EnergyRing:   lipgloss.NewStyle().Foreground(secondaryColor),
		AgentLabel:   lipgloss.NewStyle().Foreground(secondaryColor),

		InputPrompt: lipgloss.NewStyle().Foreground(primaryColor).Bold(true),
		HelpKey:     lipgloss.NewStyle().Foreground(primaryColor),
		HelpDesc:    lipgloss.NewStyle().Foreground(secondaryColor),
	}
}

// agentTypeColor maps the agent category onto its display colour.
// Specialists of any domain share one colour.
func agentTypeColor(t models.AgentType) lipgloss.Color {
	switch {
	case t == models.WorkerAgentType:
		return successColor
	case t == models.CoordinatorAgentType:
		return accentColor
	case t == models.LearnerAgentType:
		return learnerColor
	default:
		return warningColor
	}
}

// agentGlyph maps the lifecycle state onto a marker of decreasing
// visual weight. Failed agents override their type colour with red.
func agentGlyph(state models.AgentState) rune {
	switch state {
	case models.AgentWorking:
		return '●'
	case models.AgentCommunicating:
		return '◉'
	case models.AgentLearning:
		return '◐'
	case models.AgentIdle:
		return '○'
	case models.AgentFailed:
		return '✗'
	default:
		return '·'
	}
}

func (s Styles) usageStyle(class usageClass) lipgloss.Style {
	switch class {
	case usageCritical:
		return s.Critical
	case usageWarning:
		return s.Warning
	default:
		return s.OK
	}
}

func (s Styles) alertStyle(level models.AlertLevel) lipgloss.Style {
	switch level {
	case models.AlertCritical:
		return s.AlertCritical
	case models.AlertWarning:
		return s.AlertWarning
	default:
		return s.AlertInfo
	}
}

func (s Styles) healthStyle(status models.HealthStatus) lipgloss.Style {
	switch status {
	case models.HealthHealthy:
		return s.OK
	case models.HealthDegraded:
		return s.Warning
	case models.HealthUnhealthy:
		return s.Critical
	default:
		return s.Muted
	}
}
