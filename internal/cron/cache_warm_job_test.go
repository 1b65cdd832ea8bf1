package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

type fakeSpaceLister struct {
	spaces []models.Space
	err    error
}

func (f fakeSpaceLister) ListAll(context.Context) ([]models.Space, error) {
	return f.spaces, f.err
}

type fakeWarmer struct {
	failFor map[uuid.UUID]bool
	warmed  []uuid.UUID
}

func (f *fakeWarmer) Warm(_ context.Context, id uuid.UUID) error {
	if f.failFor[id] {
		return errors.New("redis down")
	}
	f.warmed = append(f.warmed, id)
	return nil
}

func spaceWithPopups(enabled bool) models.Space {
	return models.Space{ID: uuid.New(), WidgetSettings: types.WidgetSettings{PopupsEnabled: enabled}}
}

func TestCacheWarmJobWarmsPopupSpacesOnly(t *testing.T) {
	on := spaceWithPopups(true)
	off := spaceWithPopups(false)
	warmer := &fakeWarmer{}
	job, err := NewCacheWarmJob(CacheWarmJobParams{
		Logger: testLogger(),
		Spaces: fakeSpaceLister{spaces: []models.Space{on, off}},
		Warmer: warmer,
	})
	if err != nil {
		t.Fatalf("NewCacheWarmJob: %v", err)
	}
	if job.Name() != CacheWarmJobName {
		t.Fatalf("unexpected name %q", job.Name())
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(warmer.warmed) != 1 || warmer.warmed[0] != on.ID {
		t.Fatalf("expected only %s warmed, got %v", on.ID, warmer.warmed)
	}
}

func TestCacheWarmJobCombinesFailures(t *testing.T) {
	a, b, c := spaceWithPopups(true), spaceWithPopups(true), spaceWithPopups(true)
	warmer := &fakeWarmer{failFor: map[uuid.UUID]bool{a.ID: true, c.ID: true}}
	job, _ := NewCacheWarmJob(CacheWarmJobParams{
		Logger: testLogger(),
		Spaces: fakeSpaceLister{spaces: []models.Space{a, b, c}},
		Warmer: warmer,
	})

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 failures, got %d", n)
	}
	if len(warmer.warmed) != 1 || warmer.warmed[0] != b.ID {
		t.Fatalf("healthy space should still be warmed, got %v", warmer.warmed)
	}
}

func TestCacheWarmJobListFailure(t *testing.T) {
	job, _ := NewCacheWarmJob(CacheWarmJobParams{
		Logger: testLogger(),
		Spaces: fakeSpaceLister{err: errors.New("db down")},
		Warmer: &fakeWarmer{},
	})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}

func TestNewCacheWarmJobValidates(t *testing.T) {
	if _, err := NewCacheWarmJob(CacheWarmJobParams{Logger: testLogger(), Warmer: &fakeWarmer{}}); err == nil {
		t.Fatal("expected missing lister error")
	}
}
