package service

import (
	"context"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"
	"pulseboard/internal/repository"
	"pulseboard/internal/validation"
)

// TagService manages the shared tag vocabulary.
type TagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTag normalizes the name (trim, lowercase) and rejects duplicates.
func (s *TagService) CreateTag(ctx context.Context, name string, actor authz.Actor) (*models.Tag, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	normalized, err := validation.ValidateTagName(name)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	existing, err := s.tagRepo.GetByName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Tag already exists")
	}

	tag := &models.Tag{Name: normalized}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint, actor authz.Actor) (*models.Tag, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.tagRepo.GetByID(ctx, id)
}

func (s *TagService) ListTags(ctx context.Context, actor authz.Actor) ([]*models.Tag, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.tagRepo.List(ctx)
}

// RenameTag applies the same normalization as creation.
func (s *TagService) RenameTag(ctx context.Context, id uint, name string, actor authz.Actor) (*models.Tag, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized, err := validation.ValidateTagName(name)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if normalized != tag.Name {
		existing, err := s.tagRepo.GetByName(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewConflictError("Tag already exists")
		}
	}
	tag.Name = normalized

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return s.tagRepo.GetByID(ctx, id)
}

// DeleteTag detaches the tag from all feedback and removes it.
func (s *TagService) DeleteTag(ctx context.Context, id uint, actor authz.Actor) error {
	if !actor.Authenticated {
		return models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, id)
}
