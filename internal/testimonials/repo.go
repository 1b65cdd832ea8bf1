package testimonials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/pagination"
)

// Repository handles testimonial persistence. Soft-deleted rows are
// excluded by gorm unless Unscoped is used.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to testimonial operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows owner listings.
type ListFilter struct {
	Liked  *bool
	Cursor *pagination.Cursor
	Limit  int
}

func (r *Repository) Create(ctx context.Context, t *models.Testimonial) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindInSpace loads a testimonial scoped to its space.
func (r *Repository) FindInSpace(ctx context.Context, spaceID, id uuid.UUID) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.db.WithContext(ctx).
		Where("space_id = ? AND id = ?", spaceID, id).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns up to filter.Limit rows ordered newest first, continuing
// after the cursor when one is given.
func (r *Repository) List(ctx context.Context, spaceID uuid.UUID, filter ListFilter) ([]models.Testimonial, error) {
	q := r.db.WithContext(ctx).Where("space_id = ?", spaceID)
	if filter.Liked != nil {
		q = q.Where("is_liked = ?", *filter.Liked)
	}
	if filter.Cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.Testimonial
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLiked returns approved testimonials, newest first.
func (r *Repository) ListLiked(ctx context.Context, spaceID uuid.UUID, limit int) ([]models.Testimonial, error) {
	liked := true
	return r.List(ctx, spaceID, ListFilter{Liked: &liked, Limit: limit})
}

// SetLiked updates the approval flag and reports whether a row matched.
func (r *Repository) SetLiked(ctx context.Context, spaceID, id uuid.UUID, liked bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Testimonial{}).
		Where("space_id = ? AND id = ?", spaceID, id).
		Update("is_liked", liked)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete marks the testimonial deleted and reports whether a row matched.
func (r *Repository) SoftDelete(ctx context.Context, spaceID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("space_id = ? AND id = ?", spaceID, id).
		Delete(&models.Testimonial{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PurgeDeletedBefore hard-deletes rows soft-deleted before cutoff.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&models.Testimonial{})
	return res.RowsAffected, res.Error
}
