package repository

import (
	"context"
	"errors"

	"pulseboard/internal/cache"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
	// UsageCount reports how many feedback items carry the tag.
	UsageCount(ctx context.Context, id uint) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

const tagUsageSelect = "tags.*, (SELECT COUNT(*) FROM feedback_tags WHERE feedback_tags.tag_id = tags.id) AS usage_count"

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return err
	}
	cache.InvalidateTags(ctx)
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Select(tagUsageSelect).First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// GetByName returns (nil, nil) when no tag matches.
func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

// List returns all tags alphabetically, cached for a short interval since the
// tag vocabulary changes rarely.
func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := cache.Aside(ctx, cache.TagListKey, &tags, cache.TagListTTL, func() error {
		return r.db.WithContext(ctx).
			Select(tagUsageSelect).
			Order("tags.name ASC").
			Find(&tags).Error
	})
	return tags, err
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Save(tag).Error; err != nil {
		return err
	}
	cache.InvalidateTags(ctx)
	return nil
}

// Delete removes the tag and its feedback associations. Feedback items keep
// their other tags.
func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM feedback_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateTags(ctx)
	return nil
}

func (r *tagRepository) UsageCount(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("feedback_tags").Where("tag_id = ?", id).Count(&n).Error
	return n, err
}
