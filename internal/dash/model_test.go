package dash

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

func newTestModel() *Model {
	m := New(config.Default().Dashboard, logging.NewNop())
	m.width = 120
	m.height = 40
	m.ready = true
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAckToggleIsClientLocal(t *testing.T) {
	m := newTestModel()

	alert := models.NewAlert(models.AlertCritical, "CPU usage critical", "CPU usage: 95.0%")
	m.monPoller.apply(pollResult[MonitorSnapshot]{
		source: sourceMonitoring,
		seq:    1,
		data:   MonitorSnapshot{Alerts: []models.Alert{alert}},
	})

	m.Update(keyMsg("a"))
	assert.True(t, m.acked[alert.ID])

	// Toggling again clears the acknowledgement
	m.Update(keyMsg("a"))
	assert.False(t, m.acked[alert.ID])

	// The snapshot itself is untouched; acks never reach the server
	assert.False(t, m.monPoller.data.Alerts[0].Acknowledged)
}

func TestAckSurvivesRepoll(t *testing.T) {
	m := newTestModel()

	alert := models.NewAlert(models.AlertWarning, "Memory usage high", "Memory usage: 80.0%")
	m.monPoller.apply(pollResult[MonitorSnapshot]{
		source: sourceMonitoring, seq: 1,
		data: MonitorSnapshot{Alerts: []models.Alert{alert}},
	})
	m.Update(keyMsg("a"))
	require.True(t, m.acked[alert.ID])

	// A fresh poll of the same alert keeps the local ack
	m.Update(pollResult[MonitorSnapshot]{
		source: sourceMonitoring, seq: 2,
		data: MonitorSnapshot{Alerts: []models.Alert{alert}},
	})
	assert.True(t, m.acked[alert.ID])
}

func TestVisibleAlertsExcludeResolved(t *testing.T) {
	m := newTestModel()

	open := models.NewAlert(models.AlertWarning, "CPU usage high", "")
	resolved := models.NewAlert(models.AlertCritical, "Memory usage critical", "")
	resolved.Resolved = true

	m.monPoller.apply(pollResult[MonitorSnapshot]{
		source: sourceMonitoring, seq: 1,
		data: MonitorSnapshot{Alerts: []models.Alert{open, resolved}},
	})

	visible := m.visibleAlerts()
	require.Len(t, visible, 1)
	assert.Equal(t, open.ID, visible[0].ID)
}

func TestTasksPanelEmptyState(t *testing.T) {
	m := newTestModel()
	m.hivePoller.apply(pollResult[HiveSnapshot]{
		source: sourceHive, seq: 1,
		data: HiveSnapshot{},
	})

	assert.Contains(t, m.renderTasksPanel(), "No tasks")
}

func TestPanelsShowLoadingBeforeFirstData(t *testing.T) {
	m := newTestModel()
	assert.Contains(t, m.renderMetricsPanel(), "Loading...")
	assert.Contains(t, m.renderResourcePanel(), "Loading...")
	assert.Contains(t, m.renderMonitoringPanel(), "Loading...")
}

func TestStaleBadgeAppears(t *testing.T) {
	m := newTestModel()
	m.resPoller.apply(pollResult[models.ResourceInfo]{source: sourceResources, seq: 1})
	m.resPoller.lastSuccess = time.Now().Add(-10 * m.cfg.ResourceInterval)

	assert.Contains(t, m.renderResourcePanel(), "STALE")
}

func TestTickSchedulesNextPoll(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(pollTickMsg{source: sourceHive})
	assert.NotNil(t, cmd, "a tick both fetches and reschedules")
}

func TestQuitCancelsContext(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)

	select {
	case <-m.ctx.Done():
	default:
		t.Fatal("quit must cancel the poller context")
	}
}

func TestFormOpenAndCancel(t *testing.T) {
	m := newTestModel()

	m.Update(keyMsg("n"))
	assert.Equal(t, modeNewAgent, m.mode)
	assert.Len(t, m.inputs, 4)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeView, m.mode)
	assert.Nil(t, m.inputs)
}

func TestAgentFormCapabilitiesParsed(t *testing.T) {
	req := agentRequestFromValues([]string{"scout-1", "worker", "", "scouting, foraging"})
	assert.Equal(t, models.WorkerAgentType, req.Type)
	require.Len(t, req.Capabilities, 2)
	assert.Equal(t, "scouting", req.Capabilities[0].Name)
	assert.Equal(t, "foraging", req.Capabilities[1].Name)

	// Tuning is left zero so the server applies its defaults
	assert.Zero(t, req.Capabilities[0].Proficiency)
	assert.Zero(t, req.Capabilities[0].LearningRate)

	// Blank capability field submits none at all
	assert.Empty(t, agentRequestFromValues([]string{"a", "", "", ""}).Capabilities)
}

func TestAlertSelectionClamped(t *testing.T) {
	m := newTestModel()

	a1 := models.NewAlert(models.AlertWarning, "CPU usage high", "")
	a2 := models.NewAlert(models.AlertWarning, "Memory usage high", "")
	m.monPoller.apply(pollResult[MonitorSnapshot]{
		source: sourceMonitoring, seq: 1,
		data: MonitorSnapshot{Alerts: []models.Alert{a1, a2}},
	})

	m.Update(keyMsg("j"))
	assert.Equal(t, 1, m.selectedAlert)
	m.Update(keyMsg("j"))
	assert.Equal(t, 1, m.selectedAlert, "selection stops at the last alert")
	m.Update(keyMsg("k"))
	assert.Equal(t, 0, m.selectedAlert)

	// Selection resets when the list shrinks under it
	m.selectedAlert = 1
	m.Update(pollResult[MonitorSnapshot]{
		source: sourceMonitoring, seq: 2,
		data: MonitorSnapshot{Alerts: []models.Alert{a1}},
	})
	assert.Equal(t, 0, m.selectedAlert)
}
