package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/metrics"
)

type fakeLock struct {
	held     bool
	acquires int
	releases int
	err      error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held {
		return false, nil
	}
	f.held = true
	f.acquires++
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "success"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	service := newTestService(t, lock, ok, failing)

	err := service.RunOnce(context.Background())
	if err == nil || !errors.Is(err, failing.err) {
		t.Fatalf("expected the failing job's error, got %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job once, got %d and %d", ok.runs, failing.runs)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("expected lock acquired and released once, got %d/%d", lock.acquires, lock.releases)
	}
}

func TestRunOnceSelectsNamedJobs(t *testing.T) {
	warm := &testJob{name: CacheWarmJobName}
	purge := &testJob{name: PurgeJobName}
	service := newTestService(t, &fakeLock{}, warm, purge)

	if err := service.RunOnce(context.Background(), PurgeJobName); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if warm.runs != 0 || purge.runs != 1 {
		t.Fatalf("expected only purge to run, got warm=%d purge=%d", warm.runs, purge.runs)
	}
	if err := service.RunOnce(context.Background(), "nope"); err == nil {
		t.Fatal("expected unknown job error")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "a"}
	service := newTestService(t, &fakeLock{held: true}, job)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock")
	}
}

func TestRunOnceSurfacesLockErrors(t *testing.T) {
	service := newTestService(t, &fakeLock{err: errors.New("redis down")}, &testJob{name: "a"})
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "a"}
	service := newTestService(t, &fakeLock{}, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the immediate cycle to run once, got %d", job.runs)
	}
}
