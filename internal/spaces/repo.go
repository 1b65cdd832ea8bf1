package spaces

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
)

// Repository handles space persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to space operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new space row.
func (r *Repository) Create(ctx context.Context, dto CreateSpaceDTO) (*models.Space, error) {
	space := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(space).Error; err != nil {
		return nil, err
	}
	return space, nil
}

// FindByID loads a space by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	var space models.Space
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// FindBySlug loads a space by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Space, error) {
	var space models.Space
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// FindByOwner returns the owner's spaces, newest first.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Space, error) {
	var spaces []models.Space
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// ListAll returns every space. Used by background jobs.
func (r *Repository) ListAll(ctx context.Context) ([]models.Space, error) {
	var spaces []models.Space
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// SlugTaken reports whether another space already uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Space{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves the provided space.
func (r *Repository) Update(ctx context.Context, space *models.Space) error {
	if space == nil {
		return fmt.Errorf("space is required")
	}
	return r.db.WithContext(ctx).Save(space).Error
}

// Delete removes the space and its testimonials, including soft-deleted rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("space_id = ?", id).Delete(&models.Testimonial{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Space{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
