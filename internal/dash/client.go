package dash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Client talks to the hiveboard HTTP API. Per-request deadlines come from
// the caller's context; the poller owns the timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client for the configured base URL
func NewClient(cfg config.DashboardConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{},
	}
}

// HiveSnapshot bundles everything the hive widgets render in one poll
type HiveSnapshot struct {
	Status models.HiveStatus
	Agents []models.Agent
	Tasks  []models.Task
}

// MonitorSnapshot bundles the three monitoring endpoints fetched on the
// shared monitoring interval
type MonitorSnapshot struct {
	Metrics models.MonitoringSnapshot
	Alerts  []models.Alert
	Health  models.HealthReport
}

type agentsPayload struct {
	Agents []models.Agent `json:"agents"`
	Total  int            `json:"total"`
}

type tasksPayload struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

type alertsPayload struct {
	Alerts []models.Alert `json:"alerts"`
}

type apiError struct {
	Error string `json:"error"`
}

// Resources fetches the resource manager snapshot
func (c *Client) Resources(ctx context.Context) (models.ResourceInfo, error) {
	var info models.ResourceInfo
	err := c.getJSON(ctx, "/api/resources", &info)
	return info, err
}

// Hive fetches the coordinator status, agents, and tasks in parallel
func (c *Client) Hive(ctx context.Context) (HiveSnapshot, error) {
	var snap HiveSnapshot
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = c.getJSON(ctx, "/api/hive/status", &snap.Status)
	}()
	go func() {
		defer wg.Done()
		var p agentsPayload
		if errs[1] = c.getJSON(ctx, "/api/agents", &p); errs[1] == nil {
			snap.Agents = p.Agents
		}
	}()
	go func() {
		defer wg.Done()
		var p tasksPayload
		if errs[2] = c.getJSON(ctx, "/api/tasks", &p); errs[2] == nil {
			snap.Tasks = p.Tasks
		}
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// Monitoring fetches metrics, alerts, and health in parallel
func (c *Client) Monitoring(ctx context.Context) (MonitorSnapshot, error) {
	var snap MonitorSnapshot
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = c.getJSON(ctx, "/api/monitoring/metrics", &snap.Metrics)
	}()
	go func() {
		defer wg.Done()
		var p alertsPayload
		if errs[1] = c.getJSON(ctx, "/api/monitoring/alerts", &p); errs[1] == nil {
			snap.Alerts = p.Alerts
		}
	}()
	go func() {
		defer wg.Done()
		errs[2] = c.getJSON(ctx, "/api/monitoring/health", &snap.Health)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// CreateAgentRequest mirrors the POST /api/agents body
type CreateAgentRequest struct {
	Name         string              `json:"name"`
	Type         models.AgentType    `json:"type"`
	NeuralType   models.NeuralType   `json:"neural_type,omitempty"`
	Capabilities []models.Capability `json:"capabilities,omitempty"`
}

// CreateAgent registers a new agent with the coordinator
func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (models.Agent, error) {
	var agent models.Agent
	err := c.postJSON(ctx, "/api/agents", req, &agent)
	return agent, err
}

// CreateTaskRequest mirrors the POST /api/tasks body
type CreateTaskRequest struct {
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Priority    models.TaskPriority `json:"priority"`
}

// CreateTask submits a new task to the hive
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (models.Task, error) {
	var task models.Task
	err := c.postJSON(ctx, "/api/tasks", req, &task)
	return task, err
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", path, apiErr.Error)
		}
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
