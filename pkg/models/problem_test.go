package models

import (
	"net/http"
	"testing"
)

func TestNewProblem(t *testing.T) {
	tests := []struct {
		status    int
		wantType  string
		wantTitle string
	}{
		{http.StatusBadRequest, "https://pollnow.dev/problems/bad-request", "Bad Request"},
		{http.StatusConflict, "https://pollnow.dev/problems/conflict", "Conflict"},
		{http.StatusServiceUnavailable, "https://pollnow.dev/problems/service-unavailable", "Service Unavailable"},
		{799, "https://pollnow.dev/problems/about-blank", ""},
	}
	for _, tc := range tests {
		p := NewProblem(tc.status, "detail", "/api/v1/pulse/execute")
		if p.Type != tc.wantType || p.Title != tc.wantTitle || p.Status != tc.status {
			t.Errorf("NewProblem(%d) = %+v", tc.status, p)
		}
		if p.Detail != "detail" || p.Instance != "/api/v1/pulse/execute" {
			t.Errorf("NewProblem(%d) detail/instance = %q/%q", tc.status, p.Detail, p.Instance)
		}
	}
}
