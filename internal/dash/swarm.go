package dash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// labelSuppressThreshold is the agent count above which per-agent name
// labels are dropped to keep the canvas legible. The center label stays.
const labelSuppressThreshold = 10

// Swarm space is projected linearly onto the canvas. Terminal cells are
// roughly twice as tall as wide, so the vertical scale is halved.
const (
	swarmScaleX = 0.25
	swarmScaleY = 0.125
	gridStep    = 10
)

// SwarmView renders the positional swarm picture onto a cell canvas
type SwarmView struct {
	Width  int
	Height int
	styles Styles
}

// NewSwarmView creates a view of the given canvas size
func NewSwarmView(width, height int, styles Styles) SwarmView {
	return SwarmView{Width: width, Height: height, styles: styles}
}

// project maps a swarm-space position to canvas cell coordinates,
// centered on the canvas middle
func (v SwarmView) project(p models.Position) (int, int) {
	x := v.Width/2 + int(p.X*swarmScaleX+signOf(p.X)*0.5)
	y := v.Height/2 + int(p.Y*swarmScaleY+signOf(p.Y)*0.5)
	return x, y
}

func signOf(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// Render draws the full swarm frame: grid, center marker, one marker per
// agent with an energy ring, labels when the swarm is small enough, and
// the legend. Safe to call with any agent slice including nil.
func (v SwarmView) Render(agents []models.Agent, center models.Position) string {
	canvas := NewCanvas(v.Width, v.Height)
	if canvas.Width() == 0 {
		return v.legend()
	}

	showLabels := len(agents) <= labelSuppressThreshold

	for _, a := range agents {
		x, y := v.project(a.Position)

		style := lipgloss.NewStyle().Foreground(agentTypeColor(a.Type))
		if a.State == models.AgentFailed {
			style = v.styles.Critical
		}

		canvas.Set(x, y, agentGlyph(a.State), style)
		canvas.DrawRing(x, y, a.Energy/models.MaxEnergy, v.styles.EnergyRing)

		if showLabels {
			canvas.DrawText(x+2, y, a.Name, v.styles.AgentLabel)
		}
	}

	// Center marker and its label always render, even over a full swarm
	cx, cy := v.project(center)
	canvas.Set(cx, cy, '◆', v.styles.CenterMarker)
	canvas.DrawText(cx+2, cy, "center", v.styles.CenterMarker)

	canvas.DrawGrid(gridStep, v.styles.Grid)

	return canvas.Render() + "\n" + v.legend()
}

// legend is static: it names the type colours and state markers and does
// not depend on which agents are present
func (v SwarmView) legend() string {
	types := []struct {
		name  string
		color lipgloss.Color
	}{
		{"worker", agentTypeColor(models.WorkerAgentType)},
		{"coordinator", agentTypeColor(models.CoordinatorAgentType)},
		{"learner", agentTypeColor(models.LearnerAgentType)},
		{"specialist", agentTypeColor(models.NewSpecialistType("any"))},
	}

	var parts []string
	for _, t := range types {
		dot := lipgloss.NewStyle().Foreground(t.color).Render("●")
		parts = append(parts, fmt.Sprintf("%s %s", dot, v.styles.Label.Render(t.name)))
	}
	typeLine := strings.Join(parts, "  ")

	states := []struct {
		name  string
		state models.AgentState
	}{
		{"working", models.AgentWorking},
		{"learning", models.AgentLearning},
		{"idle", models.AgentIdle},
		{"failed", models.AgentFailed},
	}
	parts = parts[:0]
	for _, s := range states {
		glyph := v.styles.Value.Render(string(agentGlyph(s.state)))
		if s.state == models.AgentFailed {
			glyph = v.styles.Critical.Render(string(agentGlyph(s.state)))
		}
		parts = append(parts, fmt.Sprintf("%s %s", glyph, v.styles.Label.Render(s.name)))
	}
	stateLine := strings.Join(parts, "  ")

	return typeLine + "\n" + stateLine
}
