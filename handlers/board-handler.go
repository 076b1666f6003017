package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/danielstephany/kanban-api/middleware"
	"github.com/danielstephany/kanban-api/models"
	"github.com/danielstephany/kanban-api/services"
	"github.com/danielstephany/kanban-api/utils"
)

type BoardHandler struct {
	service *services.BoardService
}

func NewBoardHandler(service *services.BoardService) *BoardHandler {
	return &BoardHandler{service: service}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "Not Authorized")
	}
	return userID, ok
}

type createBoardRequest struct {
	Title           string   `json:"title"`
	Columns         []string `json:"columns"`
	UsersWithAccess []string `json:"usersWithAccess"`
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("title, columns, and usersWithAccess are required"))
		return
	}

	board, err := h.service.CreateBoard(r.Context(), userID, req.Title, req.Columns, req.UsersWithAccess)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) GetBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	query := models.BoardQuery{
		Page:        page,
		Limit:       limit,
		SortBy:      q.Get("sortBy"),
		Direction:   q.Get("direction"),
		SearchBy:    q.Get("searchBy"),
		SearchValue: q.Get("searchValue"),
	}

	result, err := h.service.ListBoards(r.Context(), userID, query)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *BoardHandler) GetBoardByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	board, err := h.service.GetBoard(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBoard(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondMessage(w, http.StatusOK, "board deleted")
}

type deleteColumnRequest struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
}

func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	var req deleteColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("boardId and columnId are required"))
		return
	}

	board, err := h.service.DeleteColumn(r.Context(), req.BoardID, req.ColumnID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

type renameColumnRequest struct {
	BoardID  string `json:"boardId"`
	ColumnID string `json:"columnId"`
	NewTitle string `json:"newTitle"`
}

func (h *BoardHandler) RenameColumn(w http.ResponseWriter, r *http.Request) {
	var req renameColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("boardId, columnId and newTitle are required"))
		return
	}

	board, err := h.service.RenameColumn(r.Context(), req.BoardID, req.ColumnID, req.NewTitle)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

type moveColumnRequest struct {
	BoardID     string   `json:"boardId"`
	ColumnOrder []string `json:"columnOrder"`
}

func (h *BoardHandler) MoveColumn(w http.ResponseWriter, r *http.Request) {
	var req moveColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("boardId and columnOrder are required"))
		return
	}

	board, err := h.service.MoveColumn(r.Context(), req.BoardID, req.ColumnOrder)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

type createColumnRequest struct {
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	var req createColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("boardId and title are required"))
		return
	}

	board, err := h.service.CreateColumn(r.Context(), req.BoardID, req.Title)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

type renameBoardRequest struct {
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

func (h *BoardHandler) RenameBoard(w http.ResponseWriter, r *http.Request) {
	var req renameBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("boardId and title are required"))
		return
	}

	board, err := h.service.RenameBoard(r.Context(), req.BoardID, req.Title)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

type moveTaskRequest struct {
	BoardID      string              `json:"boardId"`
	SourceColumn models.ColumnUpdate `json:"sourceColumn"`
	DestColumn   models.ColumnUpdate `json:"destColumn"`
	TaskID       string              `json:"taskId"`
	TaskStatus   string              `json:"taskStatus"`
}

func (h *BoardHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("please provide a valid request body"))
		return
	}
	if req.BoardID == "" || req.TaskID == "" || req.TaskStatus == "" {
		utils.RespondError(w, models.InvalidInput("please provide a valid request body"))
		return
	}

	board, err := h.service.MoveTask(r.Context(), req.BoardID, req.SourceColumn, req.DestColumn, req.TaskID, req.TaskStatus, userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) OwnedByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	boards, err := h.service.OwnedByUser(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) ForUsersWithAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	boards, err := h.service.ForUsersWithAccess(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) NavList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.service.NavList(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, items)
}

type addUsersRequest struct {
	Users []string `json:"users"`
}

// AddUsers is registered as GET to preserve the existing client contract,
// but it mutates the board's access list.
func (h *BoardHandler) AddUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req addUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, models.InvalidInput("expected valid array of users"))
		return
	}

	board, err := h.service.AddUsers(r.Context(), mux.Vars(r)["id"], req.Users)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, board)
}
