package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/metrics"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const tagNameTakenMessage = "Tag with this name already exists"

// TagService handles tag operations. Every call runs in one transaction.
type TagService interface {
	CreateTag(ctx context.Context, name string, ownerID uuid.UUID) (*model.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*model.Tag, error)
	UpdateTag(ctx context.Context, actorID, id uuid.UUID, patch model.TagPatch) (*model.Tag, error)
	DeleteTag(ctx context.Context, actorID, id uuid.UUID) error
	ListTags(ctx context.Context, page repository.Page) ([]model.Tag, int64, error)
}

type tagService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewTagService creates a new tag service.
func NewTagService(store repository.Store, recorder metrics.Recorder) TagService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &tagService{store: store, metrics: recorder}
}

func (s *tagService) CreateTag(ctx context.Context, name string, ownerID uuid.UUID) (*model.Tag, error) {
	tag := &model.Tag{Name: name, UserID: ownerID}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Tags().Create(ctx, tag)
	})
	if err != nil {
		return nil, tagConflict(err)
	}
	s.metrics.TagCreated()
	return tag, nil
}

func (s *tagService) GetTag(ctx context.Context, id uuid.UUID) (*model.Tag, error) {
	var tag *model.Tag
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		tag, err = tx.Tags().GetByID(ctx, id)
		return err
	})
	return tag, err
}

// UpdateTag renames a tag owned by actorID.
func (s *tagService) UpdateTag(ctx context.Context, actorID, id uuid.UUID, patch model.TagPatch) (*model.Tag, error) {
	var tag *model.Tag
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		if tag, err = tx.Tags().GetByID(ctx, id); err != nil {
			return err
		}
		if err := Authorize(actorID, tag); err != nil {
			return err
		}
		return tx.Tags().Update(ctx, tag, patch)
	})
	if err != nil {
		return nil, tagConflict(err)
	}
	return tag, nil
}

// DeleteTag soft-deletes a tag owned by actorID. Posts keep their association rows.
func (s *tagService) DeleteTag(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		tag, err := tx.Tags().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(actorID, tag); err != nil {
			return err
		}
		return tx.Tags().SoftDelete(ctx, tag)
	})
	if err != nil {
		return err
	}
	s.metrics.SoftDeleted("tag")
	return nil
}

func (s *tagService) ListTags(ctx context.Context, page repository.Page) ([]model.Tag, int64, error) {
	if !page.Valid() {
		return nil, 0, errInvalidPage
	}
	var (
		tags  []model.Tag
		total int64
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		tags, total, err = tx.Tags().ListPaginated(ctx, page)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

func tagConflict(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.Conflict(tagNameTakenMessage)
	}
	return err
}
