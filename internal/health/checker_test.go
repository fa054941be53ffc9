package health

import (
	"context"
	"errors"
	"testing"
)

type fakeRuntime struct {
	pingErr error
	has     bool
	hasErr  error
}

func (f *fakeRuntime) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeRuntime) HasModel(ctx context.Context, name string) (bool, error) {
	return f.has, f.hasErr
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping() error { return f.err }

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(&fakeRuntime{has: true}, "llama3:8b", &fakePinger{}, t.TempDir())
	c.RunOnce(context.Background())

	if !c.IsHealthy() {
		t.Fatalf("expected healthy, statuses: %+v", c.Statuses())
	}
	if len(c.Statuses()) != 4 {
		t.Errorf("got %d statuses, want 4", len(c.Statuses()))
	}
}

func TestChecker_RuntimeDown(t *testing.T) {
	c := NewChecker(&fakeRuntime{pingErr: errors.New("refused"), has: true}, "llama3:8b", &fakePinger{}, t.TempDir())
	c.RunOnce(context.Background())

	if c.IsHealthy() {
		t.Fatal("expected unhealthy")
	}
	for _, s := range c.Statuses() {
		if s.Name == "runtime" && s.Healthy {
			t.Error("runtime probe should fail")
		}
	}
}

func TestChecker_ModelMissing(t *testing.T) {
	c := NewChecker(&fakeRuntime{has: false}, "llama3:8b", &fakePinger{}, t.TempDir())
	c.RunOnce(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "model" {
			if s.Healthy {
				t.Error("model probe should fail")
			}
			if s.Error == "" {
				t.Error("model probe should carry an error message")
			}
		}
	}
}

func TestChecker_BeforeFirstRun(t *testing.T) {
	c := NewChecker(&fakeRuntime{has: true}, "m", &fakePinger{}, t.TempDir())
	if c.IsHealthy() {
		t.Error("no probe results yet should read unhealthy")
	}
}

func TestChecker_MissingDataDirIsFine(t *testing.T) {
	c := NewChecker(&fakeRuntime{has: true}, "m", &fakePinger{}, "/nonexistent/logwise-test-home")
	c.RunOnce(context.Background())
	for _, s := range c.Statuses() {
		if s.Name == "data_dir" && !s.Healthy {
			t.Errorf("missing data dir should pass (first run), got %q", s.Error)
		}
	}
}
