package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type createAgentRequest struct {
	Name         string              `json:"name"`
	Type         models.AgentType    `json:"type"`
	NeuralType   models.NeuralType   `json:"neural_type,omitempty"`
	Capabilities []models.Capability `json:"capabilities,omitempty"`
}

type createTaskRequest struct {
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Priority    models.TaskPriority `json:"priority"`
}

type agentsResponse struct {
	Agents []models.Agent `json:"agents"`
	Total  int            `json:"total"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total"`
}

type alertsResponse struct {
	Alerts []models.Alert `json:"alerts"`
}

func (s *Server) handleGetAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.hive.Agents(r.Context())
	if err != nil {
		s.internalError(w, r, "list agents failed", err)
		return
	}
	render.JSON(w, r, agentsResponse{Agents: agents, Total: len(agents)})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid request body"})
		return
	}

	agent, err := s.hive.CreateAgent(r.Context(), req.Name, req.Type, req.NeuralType, req.Capabilities)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, agent)
}

func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.hive.Tasks(r.Context())
	if err != nil {
		s.internalError(w, r, "list tasks failed", err)
		return
	}
	render.JSON(w, r, tasksResponse{Tasks: tasks, Total: len(tasks)})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "invalid request body"})
		return
	}

	task, err := s.hive.CreateTask(r.Context(), req.Description, req.Type, req.Priority)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, task)
}

func (s *Server) handleHiveStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.hive.Status(r.Context())
	if err != nil {
		s.internalError(w, r, "hive status failed", err)
		return
	}
	render.JSON(w, r, status)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.resources.Info())
}

func (s *Server) handleMonitoringMetrics(w http.ResponseWriter, r *http.Request) {
	hours := 0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "invalid hours parameter"})
			return
		}
		hours = parsed
	}
	render.JSON(w, r, s.monitor.Snapshot(hours))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, alertsResponse{Alerts: s.monitor.Alerts()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.Health()
	if report.Status == models.HealthUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	render.JSON(w, r, report)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, logging.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, errorResponse{Error: msg})
}
