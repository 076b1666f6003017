package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

type codedError struct {
	code    int
	message string
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) Status() int   { return e.code }

func decodeMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode body %q: %v", body, err)
	}
	return payload.Message
}

func TestRespondErrorTagged(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, &codedError{code: 404, message: "board not found"})

	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decodeMessage(t, w.Body.Bytes()); got != "board not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRespondErrorUntaggedDefaultsTo500(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, errors.New("boom"))

	if w.Code != 500 {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
