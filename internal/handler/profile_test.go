package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hngstage/profile-api/internal/catfact"
	"github.com/hngstage/profile-api/internal/model"
)

// stubBuilder returns a canned profile or error.
type stubBuilder struct {
	resp *model.ProfileResponse
	err  error
}

func (s *stubBuilder) Build(ctx context.Context) (*model.ProfileResponse, error) {
	return s.resp, s.err
}

func TestProfileHandler_Me_Success(t *testing.T) {
	at := time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC)
	h := NewProfileHandler(&stubBuilder{resp: model.NewProfileResponse(model.DefaultUser(), "Cats purr.", at)}, discardLogger())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response model.ProfileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("unexpected status %s", response.Status)
	}
	if response.User != model.DefaultUser() {
		t.Errorf("unexpected user %+v", response.User)
	}
	if response.Timestamp != "2025-10-19T09:00:00Z" {
		t.Errorf("unexpected timestamp %s", response.Timestamp)
	}
	if response.Fact != "Cats purr." {
		t.Errorf("unexpected fact %s", response.Fact)
	}
}

func TestProfileHandler_Me_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "external service error",
			err: &catfact.ExternalServiceError{
				Op:         "status",
				URL:        "https://catfact.ninja/fact",
				StatusCode: 502,
				Err:        errors.New("upstream secret detail"),
			},
		},
		{
			name: "unexpected error",
			err:  errors.New("upstream secret detail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))
			h := NewProfileHandler(&stubBuilder{err: tt.err}, logger)

			rec := httptest.NewRecorder()
			h.Me(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", rec.Code)
			}

			body := rec.Body.String()
			if strings.Contains(body, "secret") || strings.Contains(body, "catfact.ninja") {
				t.Errorf("response leaks error details: %s", body)
			}

			var response map[string]string
			if err := json.Unmarshal([]byte(body), &response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			want := map[string]string{
				"error":   "An error occurred while processing your request.",
				"message": "Please try again later.",
			}
			if len(response) != len(want) || response["error"] != want["error"] || response["message"] != want["message"] {
				t.Errorf("response = %v, want %v", response, want)
			}

			if !strings.Contains(logs.String(), "upstream secret detail") {
				t.Error("error cause should be logged")
			}
		})
	}
}
