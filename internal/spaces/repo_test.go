package spaces

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/db/sqlitetest"
)

func TestRepositoryRoundTrip(t *testing.T) {
	conn := sqlitetest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	owner := uuid.New()

	created, err := repo.Create(ctx, CreateSpaceDTO{OwnerID: owner, Slug: "acme", SpaceName: "Acme"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, models.DefaultHeaderTitle, created.HeaderTitle)
	assert.True(t, created.CollectStarRating)

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "grid", loaded.WidgetSettings.Layout)
	assert.Equal(t, owner, loaded.OwnerID)

	bySlug, err := repo.FindBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	owned, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestRepositorySlugUniqueness(t *testing.T) {
	conn := sqlitetest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first, err := repo.Create(ctx, CreateSpaceDTO{OwnerID: uuid.New(), Slug: "acme", SpaceName: "Acme"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateSpaceDTO{OwnerID: uuid.New(), Slug: "acme", SpaceName: "Other"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, slugConstraint))

	taken, err := repo.SlugTaken(ctx, "acme", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugTaken(ctx, "acme", first.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a space does not collide with its own slug")
}

func TestRepositoryDeleteRemovesTestimonials(t *testing.T) {
	conn := sqlitetest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	space, err := repo.Create(ctx, CreateSpaceDTO{OwnerID: uuid.New(), Slug: "acme", SpaceName: "Acme"})
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.Testimonial{SpaceID: space.ID, RespondentName: "Ada"}).Error)

	require.NoError(t, repo.Delete(ctx, space.ID))

	var count int64
	require.NoError(t, conn.Unscoped().Model(&models.Testimonial{}).Where("space_id = ?", space.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = repo.FindByID(ctx, space.ID)
	assert.True(t, db.IsNotFound(err))
	assert.True(t, db.IsNotFound(repo.Delete(ctx, space.ID)))
}
