package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doProbe(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, resp
}

func TestLiveHandlerUp(t *testing.T) {
	c := New()
	code, resp := doProbe(t, c.LiveHandler())
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}
	if resp.Status != StatusUp {
		t.Fatalf("status = %q, want %q", resp.Status, StatusUp)
	}
	if resp.Timestamp == "" {
		t.Fatal("timestamp missing")
	}
}

func TestReadyHandlerNoChecks(t *testing.T) {
	c := New()
	code, resp := doProbe(t, c.ReadyHandler())
	if code != http.StatusOK {
		t.Fatalf("code = %d, want 200", code)
	}
	if resp.Status != StatusUp {
		t.Fatalf("status = %q, want %q", resp.Status, StatusUp)
	}
}

func TestReadyHandlerFailingCheck(t *testing.T) {
	c := New()
	c.Register("storage", func() error { return nil })
	c.Register("engine", func() error { return errors.New("draining") })

	code, resp := doProbe(t, c.ReadyHandler())
	if code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", code)
	}
	if resp.Status != StatusDown {
		t.Fatalf("status = %q, want %q", resp.Status, StatusDown)
	}
	if got := resp.Components["engine"]; got.Status != StatusDown || got.Message != "draining" {
		t.Fatalf("engine component = %+v", got)
	}
	if got := resp.Components["storage"]; got.Status != StatusUp {
		t.Fatalf("storage component = %+v", got)
	}
}

func TestReadyHandlerRecovery(t *testing.T) {
	c := New()
	healthy := false
	c.Register("storage", func() error {
		if !healthy {
			return errors.New("not connected")
		}
		return nil
	})

	if code, _ := doProbe(t, c.ReadyHandler()); code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503 before recovery", code)
	}
	healthy = true
	if code, _ := doProbe(t, c.ReadyHandler()); code != http.StatusOK {
		t.Fatalf("code = %d, want 200 after recovery", code)
	}
}

func TestShutdownFlipsBothProbes(t *testing.T) {
	c := New()
	c.SetShuttingDown()

	if code, resp := doProbe(t, c.LiveHandler()); code != http.StatusServiceUnavailable || resp.Status != StatusDown {
		t.Fatalf("live: code=%d status=%q", code, resp.Status)
	}
	code, resp := doProbe(t, c.ReadyHandler())
	if code != http.StatusServiceUnavailable {
		t.Fatalf("ready: code = %d, want 503", code)
	}
	if got := resp.Components["process"]; got.Message != "shutting down" {
		t.Fatalf("process component = %+v", got)
	}
}

func TestContentType(t *testing.T) {
	c := New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, req)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}
