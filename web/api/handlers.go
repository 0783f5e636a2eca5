package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/planner"
	"github.com/hochfrequenz/task-engine/internal/store"
	"github.com/hochfrequenz/task-engine/internal/timeutil"
)

// TaskResponse is the API response for a task.
type TaskResponse struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Project         string     `json:"project,omitempty"`
	Bucket          *int       `json:"bucket,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	EstimateMinutes *int       `json:"estimate_minutes,omitempty"`
	WindowStart     *string    `json:"window_start,omitempty"`
	WindowEnd       *string    `json:"window_end,omitempty"`
	Dependencies    []int      `json:"dependencies,omitempty"`
	Status          string     `json:"status"`
	NextDueAt       *time.Time `json:"next_due_at,omitempty"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		Title:           t.Title,
		Project:         t.Project,
		Bucket:          t.Bucket,
		Tags:            t.Tags,
		Notes:           t.Notes,
		Deadline:        t.Deadline,
		EstimateMinutes: t.EstimateMinutes,
		WindowStart:     t.WindowStart,
		WindowEnd:       t.WindowEnd,
		Dependencies:    t.Dependencies,
		Status:          string(t.Status),
		NextDueAt:       t.NextDueAt,
		LastCompletedAt: t.LastCompletedAt,
	}
}

// CreateTaskRequest is the JSON body for POST /api/tasks.
type CreateTaskRequest struct {
	Title           string               `json:"title"`
	Project         string               `json:"project"`
	Bucket          *int                 `json:"bucket"`
	Tags            []string             `json:"tags"`
	Notes           string               `json:"notes"`
	Deadline        *time.Time           `json:"deadline"`
	EstimateMinutes *int                 `json:"estimate_minutes"`
	WindowStart     *string              `json:"window_start"`
	WindowEnd       *string              `json:"window_end"`
	Dependencies    []int                `json:"dependencies"`
	Curve           domain.CurveConfig   `json:"curve"`
	Recurrence      *domain.RecurrencePattern `json:"recurrence"`
}

// PatchTaskRequest is the JSON body for PATCH /api/tasks/{id}. A field
// present in the body overwrites the task's current value; an absent
// field leaves it unchanged.
type PatchTaskRequest struct {
	Title           *string            `json:"title"`
	Project         *string            `json:"project"`
	Notes           *string            `json:"notes"`
	EstimateMinutes *int               `json:"estimate_minutes"`
	WindowStart     *string            `json:"window_start"`
	WindowEnd       *string            `json:"window_end"`
	Dependencies    *[]int             `json:"dependencies"`
	Status          *domain.TaskStatus `json:"status"`
}

func (s *Server) tasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listTasks(w, r)
		case http.MethodPost:
			s.createTask(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{Project: r.URL.Query().Get("project")}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = []domain.TaskStatus{domain.TaskStatus(status)}
	}

	tasks, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = taskToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	id, err := s.lifecycle.Create(r.Context(), store.TaskInput{
		Title:           req.Title,
		Project:         req.Project,
		Bucket:          req.Bucket,
		Tags:            req.Tags,
		Notes:           req.Notes,
		Deadline:        req.Deadline,
		EstimateMinutes: req.EstimateMinutes,
		WindowStart:     req.WindowStart,
		WindowEnd:       req.WindowEnd,
		Dependencies:    req.Dependencies,
		Curve:           req.Curve,
		Recurrence:      req.Recurrence,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Broadcast(SSEEvent{Type: "task_created", Data: taskToResponse(task)})
	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

func pathTaskID(r *http.Request, trimSuffix string) (int, error) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	path = strings.TrimSuffix(path, trimSuffix)
	return strconv.Atoi(path)
}

func (s *Server) taskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathTaskID(r, "")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}

		switch r.Method {
		case http.MethodGet:
			task, err := s.store.Get(r.Context(), id)
			if err == domain.ErrNotFound {
				writeError(w, http.StatusNotFound, "task not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, taskToResponse(task))

		case http.MethodPatch:
			var req PatchTaskRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			// A field absent from the body leaves the task's current value
			// untouched; this API has no way to clear an optional field back
			// to null short of deleting and recreating the task.
			patch := store.Patch{
				Title:        req.Title,
				Project:      req.Project,
				Notes:        req.Notes,
				Dependencies: req.Dependencies,
				Status:       req.Status,
			}
			if req.EstimateMinutes != nil {
				patch.EstimateMinutes = &req.EstimateMinutes
			}
			if req.WindowStart != nil {
				patch.WindowStart = &req.WindowStart
			}
			if req.WindowEnd != nil {
				patch.WindowEnd = &req.WindowEnd
			}
			if err := s.lifecycle.Update(r.Context(), id, patch); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			task, err := s.store.Get(r.Context(), id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			s.Broadcast(SSEEvent{Type: "task_updated", Data: taskToResponse(task)})
			writeJSON(w, http.StatusOK, taskToResponse(task))

		case http.MethodDelete:
			if err := s.lifecycle.Delete(r.Context(), id); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.Broadcast(SSEEvent{Type: "task_deleted", Data: map[string]int{"id": id}})
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) completeTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id, err := pathTaskID(r, "/complete")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}

		if err := s.lifecycle.Complete(r.Context(), id, time.Now()); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		task, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Broadcast(SSEEvent{Type: "task_completed", Data: taskToResponse(task)})
		writeJSON(w, http.StatusOK, taskToResponse(task))
	}
}

func (s *Server) reopenTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id, err := pathTaskID(r, "/reopen")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}

		if err := s.lifecycle.Reopen(r.Context(), id); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		task, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.Broadcast(SSEEvent{Type: "task_reopened", Data: taskToResponse(task)})
		writeJSON(w, http.StatusOK, taskToResponse(task))
	}
}

// PlanResponse is the JSON response for GET /api/plan.
type PlanResponse struct {
	Date        string                  `json:"date"`
	Scheduled   []ScheduledTaskResponse `json:"scheduled"`
	Unscheduled []UnscheduledResponse   `json:"unscheduled"`
}

// ScheduledTaskResponse is one scheduled slot in a PlanResponse.
type ScheduledTaskResponse struct {
	Task      TaskResponse `json:"task"`
	Start     string       `json:"start"`
	End       string       `json:"end"`
	Estimate  int          `json:"estimate_minutes"`
}

// UnscheduledResponse is one unscheduled task in a PlanResponse.
type UnscheduledResponse struct {
	Task   TaskResponse `json:"task"`
	Reason string       `json:"reason"`
}

func (s *Server) planHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		date := time.Now()
		if ds := r.URL.Query().Get("date"); ds != "" {
			parsed, err := time.Parse("2006-01-02", ds)
			if err != nil {
				writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			date = parsed
		}

		plan, err := planner.PlanDay(r.Context(), s.store, date, s.plannerOpts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := PlanResponse{
			Date:        plan.Date.Format("2006-01-02"),
			Scheduled:   make([]ScheduledTaskResponse, len(plan.Scheduled)),
			Unscheduled: make([]UnscheduledResponse, len(plan.Unscheduled)),
		}
		for i, st := range plan.Scheduled {
			resp.Scheduled[i] = ScheduledTaskResponse{
				Task:     taskToResponse(st.Task),
				Start:    timeutil.FormatHHMM(st.Slot.Start),
				End:      timeutil.FormatHHMM(st.Slot.End),
				Estimate: st.EstimateMinutes,
			}
		}
		for i, ut := range plan.Unscheduled {
			resp.Unscheduled[i] = UnscheduledResponse{
				Task:   taskToResponse(ut.Task),
				Reason: ut.Reason,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
