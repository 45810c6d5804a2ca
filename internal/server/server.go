package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/render"
)

func NewRouter(ws *manager.Workspace) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", listTasksHandler(ws))
		r.Post("/", addTaskHandler(ws))
		r.Patch("/{id}", updateTaskHandler(ws))
		r.Delete("/{id}", deleteTaskHandler(ws))
		r.Post("/{id}/toggle", toggleTaskHandler(ws))
	})
	r.Get("/filter", getFilterHandler(ws))
	r.Put("/filter", setFilterHandler(ws))
	r.Route("/users", func(r chi.Router) {
		r.Get("/", listUsersHandler(ws))
		r.Post("/", addUserHandler(ws))
		r.Delete("/{id}", removeUserHandler(ws))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger пишет одну строку на запрос и кладёт request_id в контекст логгера.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithFields(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info(ctx, "HTTP запрос",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// taskView - задача с уже найденным именем исполнителя.
type taskView struct {
	models.Task
	AssigneeName string `json:"assigneeName"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate"`
	Priority    string  `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
}

// В updateTaskRequest assignedTo: null снимает назначение,
// отсутствие поля оставляет его как есть.
type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     *string         `json:"dueDate"`
	Priority    *string         `json:"priority"`
	AssignedTo  json.RawMessage `json:"assignedTo"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

func listTasksHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks := ws.VisibleTasks()
		users := ws.AllUsers()

		views := make([]taskView, 0, len(tasks))
		for _, task := range tasks {
			views = append(views, taskView{Task: task, AssigneeName: render.AssigneeName(users, task.AssignedTo)})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func addTaskHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		defer r.Body.Close()

		// Приоритет по умолчанию - medium
		priority := models.PriorityMedium
		if req.Priority != "" {
			p, err := models.ParsePriority(req.Priority)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			priority = p
		}

		task := ws.AddTask(r.Context(), models.TaskDraft{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			Priority:    priority,
			AssignedTo:  req.AssignedTo,
		})
		writeJSON(w, http.StatusCreated, task)
	}
}

func updateTaskHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		defer r.Body.Close()

		patch := models.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
		}
		if req.Priority != nil {
			p, err := models.ParsePriority(*req.Priority)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			patch.Priority = &p
		}
		if len(req.AssignedTo) > 0 {
			var assignee *string
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if assignee == nil || *assignee == "" {
				patch.ClearAssignee = true
			} else {
				patch.AssignedTo = assignee
			}
		}

		task, ok := ws.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("задача не найдена"))
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

// Удаление неизвестной задачи - тоже 204: операция идемпотентна.
func deleteTaskHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.RemoveTask(r.Context(), chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func toggleTaskHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, ok := ws.ToggleTaskComplete(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("задача не найдена"))
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func getFilterHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, filterRequest{Filter: string(ws.CurrentFilter())})
	}
}

func setFilterHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		defer r.Body.Close()

		f, err := models.ParseFilter(req.Filter)
		if err == nil {
			err = ws.SetTaskFilter(r.Context(), f)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, filterRequest{Filter: string(f)})
	}
}

func listUsersHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ws.AllUsers())
	}
}

// addUserHandler принимает произвольный JSON-объект: name - имя,
// остальные поля сохраняются как атрибуты без проверки.
func addUserHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		defer r.Body.Close()

		draft := models.UserDraft{}
		if name, ok := body["name"].(string); ok {
			draft.Name = name
		}
		delete(body, "name")
		delete(body, "id")
		if len(body) > 0 {
			draft.Attributes = body
		}

		writeJSON(w, http.StatusCreated, ws.AddUser(r.Context(), draft))
	}
}

func removeUserHandler(ws *manager.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.RemoveUser(r.Context(), chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), err, "Ошибка кодирования ответа")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
