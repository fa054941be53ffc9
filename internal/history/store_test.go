package history

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/logwise-ai/logwise/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newReport(created time.Time) *domain.Report {
	return &domain.Report{
		ID:        uuid.New().String(),
		CreatedAt: created,
		Source:    "syslog",
		Model:     "llama3:8b",
		Window: &domain.TimeWindow{
			Start: created.Add(-5 * time.Minute),
			End:   created,
		},
		LineCount: 17,
		Analysis:  "## SUMMARY\nAll fine.",
		Duration:  9 * time.Second,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	want := newReport(time.Date(2025, time.September, 9, 14, 0, 0, 0, time.UTC))

	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(want.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Model != want.Model || got.Analysis != want.Analysis || got.LineCount != 17 {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.Window == nil || !got.Window.Start.Equal(want.Window.Start) {
		t.Errorf("Window = %+v, want %+v", got.Window, want.Window)
	}
	if got.Duration != 9*time.Second {
		t.Errorf("Duration = %v", got.Duration)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, domain.ErrReportNotFound) {
		t.Fatalf("err = %v, want ErrReportNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, time.September, 9, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Save(newReport(base.Add(time.Duration(i) * time.Hour))); err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
	}

	got, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) || !got[1].CreatedAt.After(got[2].CreatedAt) {
		t.Errorf("not newest-first: %v, %v, %v", got[0].CreatedAt, got[1].CreatedAt, got[2].CreatedAt)
	}

	limited, err := s.List(2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestDeleteAndCount(t *testing.T) {
	s := newTestStore(t)
	r := newReport(time.Now().UTC())
	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if n, _ := s.Count(); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
	if err := s.Delete(r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count after delete = %d, want 0", n)
	}
	if err := s.Delete(r.ID); !errors.Is(err, domain.ErrReportNotFound) {
		t.Errorf("second delete err = %v, want ErrReportNotFound", err)
	}
}

func TestSave_NoWindow(t *testing.T) {
	s := newTestStore(t)
	r := newReport(time.Now().UTC())
	r.Window = nil

	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Window != nil {
		t.Errorf("Window = %+v, want nil", got.Window)
	}
}
