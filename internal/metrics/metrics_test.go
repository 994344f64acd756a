package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSummarizeCountsDomainEvents(t *testing.T) {
	m := New()
	m.RecordTaskCreated("Pendiente")
	m.RecordTaskCreated("Pendiente")
	m.RecordTaskCreated("En curso")
	m.RecordTransition("Pendiente", "En curso")
	m.IncDomainError("forbidden")
	m.IncDomainError("forbidden")
	m.IncDomainError("not_found")
	m.RecordAuthFailure("missing_token")
	m.IncRateLimitRejection("user")

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Tasks.Created != 3 {
		t.Errorf("created = %v, want 3", s.Tasks.Created)
	}
	if s.Tasks.ByStatus["Pendiente"] != 2 {
		t.Errorf("created Pendiente = %v, want 2", s.Tasks.ByStatus["Pendiente"])
	}
	if s.Tasks.Transitions != 1 {
		t.Errorf("transitions = %v, want 1", s.Tasks.Transitions)
	}
	if s.Errors.Total != 3 || s.Errors.ByKind["forbidden"] != 2 {
		t.Errorf("errors = %+v", s.Errors)
	}
	if s.Auth.Failures != 1 {
		t.Errorf("auth failures = %v, want 1", s.Auth.Failures)
	}
	if s.RateLimit.Rejections != 1 {
		t.Errorf("rejections = %v, want 1", s.RateLimit.Rejections)
	}
	if s.Server.StartTime == 0 {
		t.Error("expected start time to be set")
	}
}

func TestObserveHTTPErrorRate(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/api/tasks/{id}", 200, 10*time.Millisecond, 120)
	m.ObserveHTTP("GET", "/api/tasks/{id}", 404, 5*time.Millisecond, 80)
	m.ObserveHTTP("POST", "/api/tasks", 201, 20*time.Millisecond, 300)
	m.ObserveHTTP("POST", "/api/tasks", 403, 3*time.Millisecond, 60)

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.HTTP.TotalRequests != 4 {
		t.Errorf("total = %v, want 4", s.HTTP.TotalRequests)
	}
	if s.HTTP.ErrorRate != 0.5 {
		t.Errorf("error rate = %v, want 0.5", s.HTTP.ErrorRate)
	}
	if s.HTTP.P50Latency <= 0 {
		t.Errorf("p50 = %v, want > 0", s.HTTP.P50Latency)
	}
}

func TestDBPoolCollector(t *testing.T) {
	m := New()
	m.RegisterDBPoolCollector(func() (int32, int32, int32) { return 10, 7, 3 })

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.DB.TotalConns != 10 || s.DB.IdleConns != 7 || s.DB.AcquiredConns != 3 {
		t.Errorf("db = %+v", s.DB)
	}
}

func TestHandlers(t *testing.T) {
	m := New()
	m.RecordTaskCreated("Pendiente")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var s Summary
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Tasks.Created != 1 {
		t.Errorf("created = %v, want 1", s.Tasks.Created)
	}

	rec = httptest.NewRecorder()
	m.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "taskhub_tasks_created_total") {
		t.Error("expected exposition to contain taskhub_tasks_created_total")
	}
}
