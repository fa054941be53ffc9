package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/logwise-ai/logwise/internal/analyze"
	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/health"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeAnalyzer struct {
	lastReq analyze.Request
	report  *domain.Report
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analyze.Request) (*domain.Report, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeStore struct {
	reports map[string]*domain.Report
}

func newFakeStore(reports ...*domain.Report) *fakeStore {
	s := &fakeStore{reports: map[string]*domain.Report{}}
	for _, r := range reports {
		s.reports[r.ID] = r
	}
	return s
}

func (s *fakeStore) Get(id string) (*domain.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return r, nil
}

func (s *fakeStore) List(limit int) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, r := range s.reports {
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) Delete(id string) error {
	if _, ok := s.reports[id]; !ok {
		return domain.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *fakeStore) Count() (int, error) { return len(s.reports), nil }

type fakeRuntime struct{ down bool }

func (f *fakeRuntime) Ping(ctx context.Context) error {
	if f.down {
		return domain.ErrRuntimeUnreachable
	}
	return nil
}

func (f *fakeRuntime) BaseURL() string { return "http://localhost:11434" }

type fakeChecker struct{ healthy bool }

func (f *fakeChecker) IsHealthy() bool { return f.healthy }

func (f *fakeChecker) Statuses() []health.Status {
	return []health.Status{{Name: "runtime", Healthy: f.healthy, CheckedAt: time.Now()}}
}

func newTestServer(t *testing.T, an *fakeAnalyzer, st *fakeStore) (*httptest.Server, *fakeRuntime, *fakeChecker) {
	t.Helper()
	rt := &fakeRuntime{}
	ch := &fakeChecker{healthy: true}
	srv := httptest.NewServer(NewServer(ServerConfig{
		Analyzer: an,
		Store:    st,
		Runtime:  rt,
		Checker:  ch,
		Model:    "llama3:8b",
		Version:  "test",
		Log:      zerolog.Nop(),
	}).Handler())
	t.Cleanup(srv.Close)
	return srv, rt, ch
}

func sampleReport(id string) *domain.Report {
	return &domain.Report{
		ID:        id,
		CreatedAt: time.Date(2025, 9, 9, 13, 20, 0, 0, time.UTC),
		Source:    "syslog.log",
		Model:     "llama3:8b",
		LineCount: 12,
		Analysis:  "## SUMMARY\nDisk filled up.",
	}
}

// The first line carries an ISO date so the year is inferred from the
// content rather than the wall clock.
const sampleLog = `Sep  9 13:10:00 host kernel: boot image built 2025-09-01
Sep  9 13:12:42 host sshd[1]: failed login
Sep  9 13:14:00 host kernel: oom-killer invoked`

// ─── Inspect ────────────────────────────────────────────────────────────────

func TestInspect(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore())

	resp, err := http.Post(srv.URL+"/api/inspect", "text/plain", strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("POST /api/inspect: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out inspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Format != "traditional" {
		t.Errorf("format = %q", out.Format)
	}
	if len(out.Times) != 3 {
		t.Errorf("times = %v, want 3 entries", out.Times)
	}
	if out.Times[0] != "2025-09-09 13:10:00" {
		t.Errorf("first time = %q", out.Times[0])
	}
}

func TestInspect_NoTimestamps(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore())

	resp, err := http.Post(srv.URL+"/api/inspect", "text/plain", strings.NewReader("no times here\n"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

// ─── Analyze ────────────────────────────────────────────────────────────────

func postAnalyze(t *testing.T, url string, req analyzeRequest) *http.Response {
	t.Helper()
	body, _ := json.Marshal(req)
	resp, err := http.Post(url+"/api/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/analyze: %v", err)
	}
	return resp
}

func TestAnalyze_EventTimeWindow(t *testing.T) {
	an := &fakeAnalyzer{report: sampleReport("r1")}
	srv, _, _ := newTestServer(t, an, newFakeStore())

	resp := postAnalyze(t, srv.URL, analyzeRequest{
		Content:         sampleLog,
		Source:          "syslog.log",
		EventTime:       "2025-09-09 13:12:42",
		DurationMinutes: 2,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// Half-open window keeps 13:12:42 but not 13:14:00+2m lines outside it.
	if !strings.Contains(an.lastReq.Content, "13:12:42") {
		t.Errorf("window dropped the event line: %q", an.lastReq.Content)
	}
	if strings.Contains(an.lastReq.Content, "13:10:00") {
		t.Errorf("window kept a line before the start: %q", an.lastReq.Content)
	}
	if an.lastReq.Window == nil {
		t.Fatal("window not recorded")
	}
	if got := an.lastReq.Window.End.Sub(an.lastReq.Window.Start); got != 2*time.Minute {
		t.Errorf("window span = %v", got)
	}
}

func TestAnalyze_TargetWindow(t *testing.T) {
	an := &fakeAnalyzer{report: sampleReport("r1")}
	srv, _, _ := newTestServer(t, an, newFakeStore())

	resp := postAnalyze(t, srv.URL, analyzeRequest{
		Content: sampleLog,
		Target:  "Sep-09T13:12",
		Before:  "1m",
		After:   "1m",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(an.lastReq.Content, "13:12:42") {
		t.Errorf("target window dropped the event line: %q", an.lastReq.Content)
	}
	if strings.Contains(an.lastReq.Content, "13:14:00") {
		t.Errorf("target window kept a line outside it: %q", an.lastReq.Content)
	}
}

func TestAnalyze_WholeFileWithoutWindow(t *testing.T) {
	an := &fakeAnalyzer{report: sampleReport("r1")}
	srv, _, _ := newTestServer(t, an, newFakeStore())

	resp := postAnalyze(t, srv.URL, analyzeRequest{Content: sampleLog})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if an.lastReq.Content != sampleLog {
		t.Errorf("content was filtered without a window")
	}
	if an.lastReq.Window != nil {
		t.Errorf("window = %+v, want nil", an.lastReq.Window)
	}
}

func TestAnalyze_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"runtime down", domain.ErrRuntimeUnreachable, http.StatusBadGateway},
		{"model missing", domain.ErrModelNotAvailable, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t, &fakeAnalyzer{err: tt.err}, newFakeStore())
			resp := postAnalyze(t, srv.URL, analyzeRequest{Content: sampleLog})
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAnalyze_EmptyWindow(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{report: sampleReport("r1")}, newFakeStore())

	resp := postAnalyze(t, srv.URL, analyzeRequest{
		Content:         sampleLog,
		EventTime:       "2026-01-01 00:00:00",
		DurationMinutes: 1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestAnalyze_EmptyContent(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore())

	resp := postAnalyze(t, srv.URL, analyzeRequest{Content: "  \n "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// ─── Reports ────────────────────────────────────────────────────────────────

func TestGetReport(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore(sampleReport("abc12345-dead-beef")))

	resp, err := http.Get(srv.URL + "/api/reports/abc12345-dead-beef")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rep domain.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Source != "syslog.log" {
		t.Errorf("source = %q", rep.Source)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore())

	resp, err := http.Get(srv.URL + "/api/reports/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDownloadReport(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore(sampleReport("abc12345-dead-beef")))

	resp, err := http.Get(srv.URL + "/api/reports/abc12345-dead-beef/download?format=text")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	cd := resp.Header.Get("Content-Disposition")
	if !strings.Contains(cd, "rca_report_abc12345.txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "Disk filled up") {
		t.Errorf("body missing analysis: %q", buf.String())
	}
}

func TestDownloadReport_BadFormat(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore(sampleReport("abc12345-dead-beef")))

	resp, err := http.Get(srv.URL + "/api/reports/abc12345-dead-beef/download?format=pdf")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteReport(t *testing.T) {
	st := newFakeStore(sampleReport("r1"))
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, st)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/reports/r1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n, _ := st.Count(); n != 0 {
		t.Errorf("count after delete = %d", n)
	}
}

func TestListReports(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore(sampleReport("r1"), sampleReport("r2")))

	resp, err := http.Get(srv.URL + "/api/reports")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Reports []struct {
			ID       string `json:"id"`
			Analysis string `json:"analysis"`
		} `json:"reports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Reports) != 2 {
		t.Errorf("reports = %d, want 2", len(out.Reports))
	}
	for _, r := range out.Reports {
		if r.Analysis != "" {
			t.Errorf("listing should not carry analysis bodies")
		}
	}
}

// ─── Status, health, UI ─────────────────────────────────────────────────────

func TestStatus(t *testing.T) {
	srv, rt, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore(sampleReport("r1")))
	rt.down = true

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Version          string `json:"version"`
		RuntimeReachable bool   `json:"runtime_reachable"`
		ReportsStored    int    `json:"reports_stored"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Version != "test" || out.RuntimeReachable || out.ReportsStored != 1 {
		t.Errorf("status = %+v", out)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	srv, _, ch := newTestServer(t, &fakeAnalyzer{}, newFakeStore())
	ch.healthy = false

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestIndex(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, newFakeStore())

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "LogWise") {
		t.Error("index page missing title")
	}
}
