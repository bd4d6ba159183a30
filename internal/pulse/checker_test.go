package pulse

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
)

func listenTCP(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return ln.Addr().String()
}

// closedPort returns an address nothing listens on.
func closedPort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestTCPChecker(t *testing.T) {
	open := listenTCP(t)
	closed := closedPort(t)

	tests := []struct {
		name    string
		target  string
		success bool
	}{
		{"open port", open, true},
		{"refused", closed, false},
		{"missing port", "127.0.0.1", false},
		{"empty", "", false},
	}
	checker := NewTCPChecker(2 * time.Second)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := checker.Check(context.Background(), tc.target)
			if res == nil {
				t.Fatal("Check() returned nil result")
			}
			if res.Success != tc.success {
				t.Errorf("Success = %v, want %v", res.Success, tc.success)
			}
			if tc.success && (err != nil || res.Value != "1") {
				t.Errorf("Check() = %+v, %v; want value 1 and no error", res, err)
			}
			if !tc.success && (err == nil || res.ErrorMessage == "") {
				t.Errorf("expected error and ErrorMessage, got err=%v msg=%q", err, res.ErrorMessage)
			}
		})
	}
}

func TestTCPChecker_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewTCPChecker(time.Second).Check(ctx, listenTCP(t))
	if err == nil || res.Success {
		t.Errorf("Check() with cancelled context = %+v, %v; want failure", res, err)
	}
}

func TestHTTPChecker(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		success bool
		value   string
	}{
		{"ok", http.StatusOK, true, "200"},
		{"no content", http.StatusNoContent, true, "204"},
		{"not found", http.StatusNotFound, false, "404"},
		{"server error", http.StatusInternalServerError, false, "500"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			res, err := NewHTTPChecker(2*time.Second).Check(context.Background(), srv.URL)
			if res.Success != tc.success {
				t.Errorf("Success = %v, want %v (err=%v)", res.Success, tc.success, err)
			}
			if res.Value != tc.value {
				t.Errorf("Value = %q, want %q", res.Value, tc.value)
			}
			if (err == nil) != tc.success {
				t.Errorf("err = %v, want error=%v", err, !tc.success)
			}
		})
	}
}

func TestHTTPChecker_SelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	res, err := NewHTTPChecker(2*time.Second).Check(context.Background(), srv.URL)
	if err != nil || !res.Success {
		t.Errorf("Check() = %+v, %v; want success", res, err)
	}
}

func TestHTTPChecker_Unreachable(t *testing.T) {
	res, err := NewHTTPChecker(time.Second).Check(context.Background(), "http://"+closedPort(t))
	if err == nil || res.Success {
		t.Errorf("Check() = %+v, %v; want failure", res, err)
	}
}

func TestHTTPChecker_InvalidURL(t *testing.T) {
	res, err := NewHTTPChecker(time.Second).Check(context.Background(), "://bad")
	if err == nil || res == nil || res.ErrorMessage == "" {
		t.Errorf("Check() = %+v, %v; want invalid URL failure", res, err)
	}
}

func TestNoopChecker(t *testing.T) {
	res, err := NoopChecker{}.Check(context.Background(), "")
	if err != nil || !res.Success {
		t.Errorf("Check() = %+v, %v; want success", res, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (NoopChecker{}).Check(ctx, ""); err == nil {
		t.Error("Check() with cancelled context should fail")
	}
}

func TestDefaultCheckers_CoverPollableTypes(t *testing.T) {
	checkers := defaultCheckers(DefaultConfig())
	for _, typ := range models.ObjectTypes() {
		_, ok := checkers[typ]
		if ok != typ.Pollable() {
			t.Errorf("checker for %q present=%v, pollable=%v", typ, ok, typ.Pollable())
		}
	}
}
