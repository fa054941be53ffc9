package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/logwise-ai/logwise/internal/analyze"
	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/logparse"
	"github.com/logwise-ai/logwise/internal/report"
)

// eventTimeLayout matches the strings shown in the event time dropdown.
const eventTimeLayout = "2006-01-02 15:04:05"

// readLogContent accepts either a multipart upload (field "file") or a
// raw request body, capped at the configured upload size.
func (s *Server) readLogContent(w http.ResponseWriter, r *http.Request) (content, source string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes())

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.maxBodyBytes()); err != nil {
			return "", "", fmt.Errorf("parse upload: %w", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", "", fmt.Errorf("missing file field: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", "", fmt.Errorf("read upload: %w", err)
		}
		return string(data), hdr.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}
	return string(data), "upload", nil
}

// ─── POST /api/inspect ──────────────────────────────────────────────────────

type inspectResponse struct {
	Format string   `json:"format"`
	Year   int      `json:"year"`
	Times  []string `json:"times"`
}

// handleInspect detects the timestamp format and the candidate event
// times of an uploaded log, for the UI's dropdown.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	content, _, err := s.readLogContent(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(content) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrNoLogContent.Error())
		return
	}

	format := logparse.DetectFormat(content)
	year, times := logparse.DetectTimes(content, format)
	if len(times) == 0 {
		writeError(w, http.StatusUnprocessableEntity, domain.ErrNoTimestampedLines.Error())
		return
	}

	out := inspectResponse{Format: string(format), Year: year}
	for _, t := range times {
		out.Times = append(out.Times, t.Format(eventTimeLayout))
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── POST /api/analyze ──────────────────────────────────────────────────────

type analyzeRequest struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Model   string `json:"model"`

	// Web flow: exact event time plus duration.
	EventTime       string `json:"event_time"`
	DurationMinutes int    `json:"duration_minutes"`

	// CLI-style flow: target time with a window either side.
	Target string `json:"target"`
	Before string `json:"before"`
	After  string `json:"after"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes())

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrNoLogContent.Error())
		return
	}

	content := req.Content
	var window *domain.TimeWindow

	format := logparse.DetectFormat(content)
	year := logparse.InferYear(content)

	switch {
	case req.EventTime != "":
		start, err := time.Parse(eventTimeLayout, req.EventTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "event_time must look like '2025-09-09 13:12:42'")
			return
		}
		minutes := req.DurationMinutes
		if minutes <= 0 {
			minutes = 5
		}
		d := time.Duration(minutes) * time.Minute
		content = logparse.FilterWindow(content, start, d, format, start.Year())
		window = &domain.TimeWindow{Start: start, End: start.Add(d)}

	case req.Target != "":
		target, err := logparse.ParseTarget(req.Target, year)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		before, after, err := parseOffsets(req.Before, req.After)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lines := logparse.FilterAround(strings.Split(content, "\n"), target, before, after, year)
		content = strings.Join(lines, "\n")
		window = &domain.TimeWindow{Start: target.Add(-before), End: target.Add(after)}
	}

	if strings.TrimSpace(content) == "" {
		writeError(w, http.StatusUnprocessableEntity, domain.ErrEmptyWindow.Error())
		return
	}

	source := req.Source
	if source == "" {
		source = "upload"
	}

	rep, err := s.cfg.Analyzer.Analyze(r.Context(), analyze.Request{
		Source:  source,
		Content: content,
		Window:  window,
		Model:   req.Model,
	})
	if err != nil {
		writeError(w, analyzeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// parseOffsets applies the 5m default either side.
func parseOffsets(before, after string) (time.Duration, time.Duration, error) {
	if before == "" {
		before = "5m"
	}
	if after == "" {
		after = "5m"
	}
	b, err := logparse.ParseOffset(before)
	if err != nil {
		return 0, 0, err
	}
	a, err := logparse.ParseOffset(after)
	if err != nil {
		return 0, 0, err
	}
	return b, a, nil
}

// analyzeStatus maps pipeline errors onto HTTP status codes.
func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrRuntimeUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrModelNotAvailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoLogContent), errors.Is(err, domain.ErrEmptyWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ─── /api/reports ───────────────────────────────────────────────────────────

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := s.cfg.Store.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Trim analysis bodies in the listing; they can be large.
	type item struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Source    string    `json:"source"`
		Model     string    `json:"model"`
		LineCount int       `json:"line_count"`
	}
	out := make([]item, 0, len(reports))
	for _, rep := range reports {
		out = append(out, item{
			ID:        rep.ID,
			CreatedAt: rep.CreatedAt,
			Source:    rep.Source,
			Model:     rep.Model,
			LineCount: rep.LineCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.cfg.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, reportStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.cfg.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, reportStatus(err), err.Error())
		return
	}

	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := report.Render(rep, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ext := map[report.Format]string{
		report.FormatText:     "txt",
		report.FormatJSON:     "json",
		report.FormatMarkdown: "md",
	}[format]
	short := rep.ID
	if len(short) > 8 {
		short = short[:8]
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=rca_report_%s.%s", short, ext))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, reportStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func reportStatus(err error) int {
	if errors.Is(err, domain.ErrReportNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ─── Status and health ──────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	reachable := s.cfg.Runtime.Ping(r.Context()) == nil
	count, _ := s.cfg.Store.Count()

	writeJSON(w, http.StatusOK, map[string]any{
		"version":           s.cfg.Version,
		"runtime_url":       s.cfg.Runtime.BaseURL(),
		"runtime_reachable": reachable,
		"model":             s.cfg.Model,
		"reports_stored":    count,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := s.cfg.Checker.Statuses()
	code := http.StatusOK
	if !s.cfg.Checker.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"healthy": s.cfg.Checker.IsHealthy(),
		"checks":  statuses,
	})
}
