package clusterview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeControls struct {
	resets     int
	refreshes  int
	refreshErr error
}

func (c *fakeControls) ResetCamera() { c.resets++ }

func (c *fakeControls) Refresh(ctx context.Context) error {
	c.refreshes++
	return c.refreshErr
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestWebTargetRoutes(t *testing.T) {
	if _, err := NewWebTarget(""); err == nil {
		t.Fatalf("empty address accepted")
	}

	v, _ := mountDemo(t, 2)
	m := NewMetrics()
	target, err := NewWebTarget(":0", WithView(v), WithWebMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	ctrl := &fakeControls{}
	target.controls = ctrl

	state, err := v.GetViewState()
	if err != nil {
		t.Fatal(err)
	}
	target.state = state
	h := target.Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		contains string
	}{
		{"viewmodel", http.MethodGet, "/api/viewmodel", http.StatusOK, `"machines":[`},
		{"empty selection", http.MethodGet, "/api/selection", http.StatusOK, `{}`},
		{"camera reset", http.MethodPost, "/api/camera/reset", http.StatusAccepted, ""},
		{"refresh", http.MethodPost, "/api/refresh", http.StatusNoContent, ""},
		{"health", http.MethodGet, "/health", http.StatusOK, "ok"},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "clusterview_machines"},
		{"index", http.MethodGet, "/", http.StatusOK, "<strong>Machines:</strong> 2"},
		{"wrong method", http.MethodGet, "/api/camera/reset", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, tt.method, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Fatalf("body %q lacks %q", rec.Body.String(), tt.contains)
			}
		})
	}
	if ctrl.resets != 1 || ctrl.refreshes != 1 {
		t.Fatalf("controls called %d/%d times", ctrl.resets, ctrl.refreshes)
	}

	ctrl.refreshErr = errors.New("source down")
	if rec := serve(t, h, http.MethodPost, "/api/refresh"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("failed refresh status = %d", rec.Code)
	}
}

func TestWebTargetSelectionDetail(t *testing.T) {
	v, _ := mountDemo(t, 3)
	v.Click(screen(t, v, machineSpot(v, "node-b")))

	target, err := NewWebTarget(":0", WithView(v))
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(t, target.Handler(), http.MethodGet, "/api/selection")
	if !strings.Contains(rec.Body.String(), `"name":"node-b"`) {
		t.Fatalf("selection body = %s", rec.Body.String())
	}
}

func TestWebTargetWithoutView(t *testing.T) {
	target, err := NewWebTarget(":0")
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(t, target.Handler(), http.MethodPost, "/api/camera/reset"); rec.Code != http.StatusNotImplemented {
		t.Fatalf("reset without view = %d", rec.Code)
	}
}

func TestWebTargetServes(t *testing.T) {
	target, err := NewWebTarget("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer target.Close()

	if err := target.Update(context.Background(), &ViewState{Summary: SummaryView{Machines: 1}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	resp, err := http.Get(target.URL() + "/api/viewmodel")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("response = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
