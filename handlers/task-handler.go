package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/services"
	"github.com/danielstephany/kanban-api/utils"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	BoardID     string `json:"boardId"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("title, status and boardId are required"))
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.BoardID, req.Title, req.Description, req.Status, userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) GetTasksForBoard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	tasks, err := h.service.ListForBoard(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, tasks)
}

type updateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("title and status are required"))
		return
	}

	if _, err := h.service.UpdateTask(r.Context(), mux.Vars(r)["id"], req.Title, req.Description, req.Status, userID); err != nil {
		utils.RespondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondMessage(w, http.StatusOK, "task deleted")
}
