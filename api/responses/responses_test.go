package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"policy_number": "PLN-2026-000001"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["policy_number"] != "PLN-2026-000001" {
		t.Fatalf("data = %+v", body.Data)
	}
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestWriteErrorCodedMessagePassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("code = %q", body.Error.Code)
	}
	if body.Error.Message != "purchase not found" {
		t.Fatalf("message = %q", body.Error.Message)
	}
}

func TestWriteErrorInternalHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "db exploded in a very specific way")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", body.Error.Message)
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("plain error"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("code = %q", body.Error.Code)
	}
}

func TestWriteErrorDetailsOnlyWhenAllowed(t *testing.T) {
	allowed := httptest.NewRecorder()
	WriteError(context.Background(), nil, allowed,
		pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"field": "end_date"}))

	var allowedBody struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(allowed.Body.Bytes(), &allowedBody); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if allowedBody.Error.Details["field"] != "end_date" {
		t.Fatalf("details = %+v", allowedBody.Error.Details)
	}

	blocked := httptest.NewRecorder()
	WriteError(context.Background(), nil, blocked,
		pkgerrors.New(pkgerrors.CodeNotFound, "missing").WithDetails(map[string]string{"field": "id"}))

	var blockedBody struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(blocked.Body.Bytes(), &blockedBody); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if blockedBody.Error.Details != nil {
		t.Fatalf("details leaked on disallowed code: %+v", blockedBody.Error.Details)
	}
}
