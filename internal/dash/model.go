// Package dash is the terminal dashboard: per-widget pollers over the
// hiveboard HTTP API, a cell-canvas swarm view, and threshold-coloured
// resource and monitoring panels.
package dash

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Poller source names, used to route interval ticks
const (
	sourceResources  = "resources"
	sourceMonitoring = "monitoring"
	sourceHive       = "hive"
)

type viewMode int

const (
	modeView viewMode = iota
	modeNewAgent
	modeNewTask
)

// createdMsg reports the outcome of a create form submission
type createdMsg struct {
	kind string
	err  error
}

// Model is the root Bubbletea model for the dashboard
type Model struct {
	cfg    config.DashboardConfig
	client *Client
	styles Styles
	logger logging.Logger

	// Cancelled on quit so in-flight fetches stop with the program
	ctx    context.Context
	cancel context.CancelFunc

	resPoller  *poller[models.ResourceInfo]
	monPoller  *poller[MonitorSnapshot]
	hivePoller *poller[HiveSnapshot]

	// Acknowledgements live in this client only; the server never sees them
	acked         map[uuid.UUID]bool
	selectedAlert int

	mode     viewMode
	inputs   []textinput.Model
	focusIdx int
	status   string

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates the dashboard model against the configured API
func New(cfg config.DashboardConfig, logger logging.Logger) *Model {
	client := NewClient(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	return &Model{
		cfg:    cfg,
		client: client,
		styles: DefaultStyles(),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		acked:  make(map[uuid.UUID]bool),
		resPoller: newPoller(sourceResources, cfg.ResourceInterval, cfg.FetchTimeout, cfg.StaleFactor,
			client.Resources),
		monPoller: newPoller(sourceMonitoring, cfg.MonitorInterval, cfg.FetchTimeout, cfg.StaleFactor,
			client.Monitoring),
		hivePoller: newPoller(sourceHive, cfg.HiveInterval, cfg.FetchTimeout, cfg.StaleFactor,
			client.Hive),
	}
}

// Init implements tea.Model: every widget fetches immediately, then
// settles into its own interval
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.resPoller.fetchCmd(m.ctx),
		m.monPoller.fetchCmd(m.ctx),
		m.hivePoller.fetchCmd(m.ctx),
		m.resPoller.tickCmd(),
		m.monPoller.tickCmd(),
		m.hivePoller.tickCmd(),
	)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case pollTickMsg:
		switch msg.source {
		case sourceResources:
			return m, tea.Batch(m.resPoller.fetchCmd(m.ctx), m.resPoller.tickCmd())
		case sourceMonitoring:
			return m, tea.Batch(m.monPoller.fetchCmd(m.ctx), m.monPoller.tickCmd())
		case sourceHive:
			return m, tea.Batch(m.hivePoller.fetchCmd(m.ctx), m.hivePoller.tickCmd())
		}

	case pollResult[models.ResourceInfo]:
		m.resPoller.apply(msg)
		m.logPollFailure(sourceResources, msg.err)

	case pollResult[MonitorSnapshot]:
		if m.monPoller.apply(msg) {
			m.clampAlertSelection()
		}
		m.logPollFailure(sourceMonitoring, msg.err)

	case pollResult[HiveSnapshot]:
		m.hivePoller.apply(msg)
		m.logPollFailure(sourceHive, msg.err)

	case createdMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("create %s failed: %v", msg.kind, msg.err)
			return m, nil
		}
		m.status = msg.kind + " created"
		// Pull fresh hive data instead of waiting out the interval
		return m, m.hivePoller.fetchCmd(m.ctx)
	}

	if m.mode != modeView {
		return m, m.updateInputs(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeView {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case "up", "k":
		if m.selectedAlert > 0 {
			m.selectedAlert--
		}

	case "down", "j":
		if m.selectedAlert < len(m.visibleAlerts())-1 {
			m.selectedAlert++
		}

	case "a":
		alerts := m.visibleAlerts()
		if m.selectedAlert < len(alerts) {
			id := alerts[m.selectedAlert].ID
			m.acked[id] = !m.acked[id]
		}

	case "n":
		m.openForm(modeNewAgent, []string{
			"name",
			"type (worker/coordinator/learner/specialist:<domain>)",
			"neural (fann/lstm, blank for basic)",
			"capabilities (comma-separated names)",
		})

	case "t":
		m.openForm(modeNewTask, []string{"description", "type", "priority (1-15)"})

	case "r":
		return m, tea.Batch(
			m.resPoller.fetchCmd(m.ctx),
			m.monPoller.fetchCmd(m.ctx),
			m.hivePoller.fetchCmd(m.ctx),
		)
	}
	return m, nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case tea.KeyEsc:
		m.mode = modeView
		m.inputs = nil
		m.status = ""
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if msg.Type == tea.KeyTab {
			m.focusField(m.focusIdx + 1)
		} else {
			m.focusField(m.focusIdx - 1)
		}
		return m, nil

	case tea.KeyEnter:
		if m.focusIdx < len(m.inputs)-1 {
			m.focusField(m.focusIdx + 1)
			return m, nil
		}
		return m.submitForm()
	}

	return m, m.updateInputs(msg)
}

func (m *Model) openForm(mode viewMode, placeholders []string) {
	m.mode = mode
	m.status = ""
	m.inputs = make([]textinput.Model, len(placeholders))
	for i, ph := range placeholders {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.Prompt = "> "
		ti.CharLimit = 128
		ti.Width = 48
		m.inputs[i] = ti
	}
	m.focusField(0)
}

func (m *Model) focusField(idx int) {
	if len(m.inputs) == 0 {
		return
	}
	if idx < 0 {
		idx = len(m.inputs) - 1
	}
	idx %= len(m.inputs)
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focusIdx = idx
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	values := make([]string, len(m.inputs))
	for i := range m.inputs {
		values[i] = strings.TrimSpace(m.inputs[i].Value())
	}

	mode := m.mode
	m.mode = modeView
	m.inputs = nil

	switch mode {
	case modeNewAgent:
		req := agentRequestFromValues(values)
		return m, m.createCmd("agent", func(ctx context.Context) error {
			_, err := m.client.CreateAgent(ctx, req)
			return err
		})

	case modeNewTask:
		priority := models.MediumPriority
		if values[2] != "" {
			if parsed, err := strconv.Atoi(values[2]); err == nil {
				priority = models.TaskPriority(parsed)
			}
		}
		req := CreateTaskRequest{
			Description: values[0],
			Type:        values[1],
			Priority:    priority,
		}
		return m, m.createCmd("task", func(ctx context.Context) error {
			_, err := m.client.CreateTask(ctx, req)
			return err
		})
	}
	return m, nil
}

// agentRequestFromValues builds the create request from the form fields:
// name, type, neural backend, capability names. Capability rows carry only
// their names; the coordinator fills in the default tuning.
func agentRequestFromValues(values []string) CreateAgentRequest {
	req := CreateAgentRequest{
		Name:         values[0],
		Type:         models.AgentType(values[1]),
		NeuralType:   models.NeuralType(values[2]),
		Capabilities: parseCapabilities(values[3]),
	}
	if req.Type == "" {
		req.Type = models.WorkerAgentType
	}
	return req
}

func parseCapabilities(raw string) []models.Capability {
	var caps []models.Capability
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			caps = append(caps, models.Capability{Name: name})
		}
	}
	return caps
}

func (m *Model) createCmd(kind string, call func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	timeout := m.cfg.FetchTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return createdMsg{kind: kind, err: call(ctx)}
	}
}

func (m *Model) logPollFailure(source string, err error) {
	if err == nil {
		return
	}
	ctx := logging.WithWidget(context.Background(), source)
	m.logger.WithContext(ctx).Warn("poll failed", logging.Err(err))
}

// visibleAlerts returns the unresolved alerts in poll order
func (m *Model) visibleAlerts() []models.Alert {
	if !m.monPoller.hasData {
		return nil
	}
	var out []models.Alert
	for _, a := range m.monPoller.data.Alerts {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out
}

func (m *Model) clampAlertSelection() {
	if n := len(m.visibleAlerts()); m.selectedAlert >= n {
		m.selectedAlert = 0
	}
}

// Run starts the dashboard program
func Run(cfg config.DashboardConfig, logger logging.Logger) error {
	p := tea.NewProgram(New(cfg, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
