package dash

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hiveboard/hiveboard/pkg/models"
)

func swarmAgents(n int) []models.Agent {
	agents := make([]models.Agent, n)
	for i := range agents {
		a := models.NewAgent(fmt.Sprintf("ag%02d", i), models.WorkerAgentType, nil)
		a.Position = models.Position{X: float64((i%5)*30 - 60), Y: float64((i/5)*30 - 30)}
		agents[i] = a
	}
	return agents
}

func TestSwarmViewLabelsSmallSwarm(t *testing.T) {
	v := NewSwarmView(60, 16, DefaultStyles())
	out := v.Render(swarmAgents(3), models.Position{})

	for i := 0; i < 3; i++ {
		assert.Contains(t, out, fmt.Sprintf("ag%02d", i), "small swarms label every agent")
	}
	assert.Contains(t, out, "center")
}

func TestSwarmViewSuppressesLabelsAtScale(t *testing.T) {
	v := NewSwarmView(60, 16, DefaultStyles())

	atLimit := v.Render(swarmAgents(labelSuppressThreshold), models.Position{})
	assert.Contains(t, atLimit, "ag00", "labels still shown at the threshold")

	crowded := v.Render(swarmAgents(labelSuppressThreshold+1), models.Position{})
	for i := 0; i <= labelSuppressThreshold; i++ {
		assert.NotContains(t, crowded, fmt.Sprintf("ag%02d", i), "labels suppressed above the threshold")
	}
	assert.Contains(t, crowded, "center", "center label survives suppression")
}

func TestSwarmViewEmptySwarm(t *testing.T) {
	v := NewSwarmView(60, 16, DefaultStyles())
	assert.NotPanics(t, func() {
		out := v.Render(nil, models.Position{})
		assert.Contains(t, out, "center")
		assert.Contains(t, out, "worker", "legend always renders")
	})
}

func TestSwarmViewZeroSize(t *testing.T) {
	v := NewSwarmView(0, 0, DefaultStyles())
	assert.NotPanics(t, func() {
		out := v.Render(swarmAgents(5), models.Position{})
		// No canvas, but the legend still describes the encoding
		assert.Contains(t, out, "worker")
	})
}

func TestSwarmViewLegendIsStatic(t *testing.T) {
	v := NewSwarmView(60, 16, DefaultStyles())
	legend := v.legend()
	for _, name := range []string{"worker", "coordinator", "learner", "specialist", "working", "idle", "failed"} {
		assert.Contains(t, legend, name)
	}

	// Same legend no matter what the swarm holds
	withAgents := v.Render(swarmAgents(4), models.Position{})
	assert.Contains(t, withAgents, "specialist")
}

func TestSwarmViewFailedAgentMarker(t *testing.T) {
	v := NewSwarmView(40, 10, DefaultStyles())
	a := models.NewAgent("down", models.WorkerAgentType, nil)
	a.State = models.AgentFailed

	out := v.Render([]models.Agent{a}, models.Position{})
	assert.True(t, strings.ContainsRune(out, '✗'), "failed agents get the failure glyph")
}
