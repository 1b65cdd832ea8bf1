package publicdata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustflow/trustflow-backend/internal/spaces"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/db/sqlitetest"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

type memoryCache struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) GetValue(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryCache) PublicDataKey(spaceID string) string {
	return "tf:public_data:" + spaceID
}

type fixture struct {
	svc   *Service
	cache *memoryCache
	repo  *testimonials.Repository
	space *models.Space
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := sqlitetest.Open(t)
	spaceRepo := spaces.NewRepository(conn)
	space, err := spaceRepo.Create(context.Background(), spaces.CreateSpaceDTO{OwnerID: uuid.New(), Slug: "acme", SpaceName: "Acme"})
	require.NoError(t, err)

	space.WidgetSettings = types.WidgetSettings{PopupsEnabled: true, PopupGap: 3, CardTheme: "dark"}
	require.NoError(t, spaceRepo.Update(context.Background(), space))

	repo := testimonials.NewRepository(conn)
	cache := newMemoryCache()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(spaceRepo, repo, cache, 30*time.Second, logg)
	require.NoError(t, err)
	return &fixture{svc: svc, cache: cache, repo: repo, space: space}
}

func (f *fixture) seed(t *testing.T, name string, liked bool, age time.Duration) {
	t.Helper()
	content := "hello from " + name
	email := name + "@example.com"
	require.NoError(t, f.repo.Create(context.Background(), &models.Testimonial{
		SpaceID:         f.space.ID,
		Content:         &content,
		RespondentName:  name,
		RespondentEmail: &email,
		IsLiked:         liked,
		CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(-age),
	}))
}

func TestJSONServesLikedOnlyWithoutEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "old", true, 2*time.Hour)
	f.seed(t, "unliked", false, time.Minute)
	f.seed(t, "new", true, time.Hour)

	raw, err := f.svc.JSON(context.Background(), f.space.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "respondent_email")
	assert.NotContains(t, string(raw), "@example.com")

	var payload Payload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.True(t, payload.WidgetSettings.PopupsEnabled)
	require.Len(t, payload.Testimonials, 2)
	assert.Equal(t, "new", payload.Testimonials[0].RespondentName)
	assert.Equal(t, "old", payload.Testimonials[1].RespondentName)
}

func TestJSONReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "first", true, time.Hour)
	ctx := context.Background()

	_, err := f.svc.JSON(ctx, f.space.ID)
	require.NoError(t, err)
	key := f.cache.PublicDataKey(f.space.ID.String())
	assert.Equal(t, 30*time.Second, f.cache.ttls[key])

	f.seed(t, "second", true, 0)
	cached, err := f.svc.JSON(ctx, f.space.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(cached), "second", "served from cache until invalidated")

	require.NoError(t, f.svc.Invalidate(ctx, f.space.ID))
	fresh, err := f.svc.JSON(ctx, f.space.ID)
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "second")
}

func TestJSONFallsBackWhenCacheFails(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ada", true, 0)
	f.cache.readErr = errors.New("redis down")

	raw, err := f.svc.JSON(context.Background(), f.space.ID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "ada"))
}

func TestJSONUnknownSpace(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.JSON(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPublicDataFeedsPopupEngine(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ada", true, 0)

	data, err := f.svc.PublicData(context.Background(), f.space.ID.String())
	require.NoError(t, err)
	assert.True(t, data.PopupsEnabled())
	require.Len(t, data.Testimonials, 1)
	assert.True(t, data.Testimonials[0].IsLiked)
	assert.Equal(t, "hello from ada", data.Testimonials[0].Content)
	assert.Equal(t, float64(3), data.WidgetSettings.PopupGap)

	_, err = f.svc.PublicData(context.Background(), "not-a-uuid")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestWarmPopulatesCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Warm(context.Background(), f.space.ID))
	_, ok := f.cache.values[f.cache.PublicDataKey(f.space.ID.String())]
	assert.True(t, ok)
}
