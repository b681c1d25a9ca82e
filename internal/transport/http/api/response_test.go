package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusNotFound, "unknown_jurisdiction", "unknown state", "req-1")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error == nil || env.Error.Code != "unknown_jurisdiction" || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestSuccessWritesData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]float64{"takehomePay": 54539.5}, "req-2")

	var env struct {
		Success bool               `json:"success"`
		Data    map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data["takehomePay"] != 54539.5 {
		t.Fatalf("unexpected envelope %+v", env)
	}
}
