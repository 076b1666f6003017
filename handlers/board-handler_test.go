package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielstephany/kanban-api/middleware"
)

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body.Message
}

func TestBoardHandlerRequiresUser(t *testing.T) {
	h := NewBoardHandler(nil)

	endpoints := map[string]http.HandlerFunc{
		"CreateBoard":  h.CreateBoard,
		"GetBoards":    h.GetBoards,
		"GetBoardByID": h.GetBoardByID,
		"DeleteBoard":  h.DeleteBoard,
		"MoveTask":     h.MoveTask,
		"NavList":      h.NavList,
		"AddUsers":     h.AddUsers,
	}

	for name, endpoint := range endpoints {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/boards", strings.NewReader("{}"))

			endpoint(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if msg := decodeMessage(t, rec); msg != "Not Authorized" {
				t.Fatalf("message = %q", msg)
			}
		})
	}
}

func TestMoveTaskRejectsIncompleteBody(t *testing.T) {
	h := NewBoardHandler(nil)

	bodies := []string{
		`not json`,
		`{}`,
		`{"boardId":"abc","taskId":"def"}`,
	}
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/boards/move-task", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))

		h.MoveTask(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: status = %d, want 422", body, rec.Code)
		}
	}
}

func TestCreateBoardRejectsMalformedJSON(t *testing.T) {
	h := NewBoardHandler(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/boards", strings.NewReader("{"))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))

	h.CreateBoard(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
