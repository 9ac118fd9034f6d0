package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/metrics"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

var errInvalidPage = apperrors.Validation(fmt.Sprintf("page must be between 1 and %d and size between 1 and %d",
	repository.MaxPageNumber, repository.MaxPageSize))

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	Title   string
	Content string
	OwnerID uuid.UUID
	// TagIDs that do not name an active tag are dropped silently.
	TagIDs []uuid.UUID
}

// PostService handles post operations. Every call runs in one transaction and every returned
// post has its author and active tags loaded.
type PostService interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	UpdatePost(ctx context.Context, actorID, id uuid.UUID, patch model.PostPatch) (*model.Post, error)
	DeletePost(ctx context.Context, actorID, id uuid.UUID) error
	ListPosts(ctx context.Context, page repository.Page) ([]model.Post, int64, error)
}

type postService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewPostService creates a new post service.
func NewPostService(store repository.Store, recorder metrics.Recorder) PostService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &postService{store: store, metrics: recorder}
}

func (s *postService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	var created *model.Post
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post := &model.Post{
			Title:   in.Title,
			Content: in.Content,
			UserID:  in.OwnerID,
		}
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		if err := setTags(ctx, tx, post, in.TagIDs); err != nil {
			return err
		}
		var err error
		created, err = tx.Posts().GetByID(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.PostCreated()
	return created, nil
}

func (s *postService) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post *model.Post
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		post, err = tx.Posts().GetByID(ctx, id)
		return err
	})
	return post, err
}

// UpdatePost applies patch to a post owned by actorID. A non-nil patch.TagIDs replaces the whole tag set.
func (s *postService) UpdatePost(ctx context.Context, actorID, id uuid.UUID, patch model.PostPatch) (*model.Post, error) {
	var updated *model.Post
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post, err := tx.Posts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(actorID, post); err != nil {
			return err
		}
		if err := tx.Posts().Update(ctx, post, patch); err != nil {
			return err
		}
		if patch.TagIDs != nil {
			if err := setTags(ctx, tx, post, *patch.TagIDs); err != nil {
				return err
			}
		}
		updated, err = tx.Posts().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost soft-deletes a post owned by actorID. Tag associations stay in place.
func (s *postService) DeletePost(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post, err := tx.Posts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(actorID, post); err != nil {
			return err
		}
		return tx.Posts().SoftDelete(ctx, post)
	})
	if err != nil {
		return err
	}
	s.metrics.SoftDeleted("post")
	return nil
}

func (s *postService) ListPosts(ctx context.Context, page repository.Page) ([]model.Post, int64, error) {
	if !page.Valid() {
		return nil, 0, errInvalidPage
	}
	var (
		posts []model.Post
		total int64
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		posts, total, err = tx.Posts().ListPaginated(ctx, page)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// setTags resolves ids against active tags and makes the result the post's complete tag set.
func setTags(ctx context.Context, tx repository.Store, post *model.Post, ids []uuid.UUID) error {
	tags, err := tx.Tags().FindActiveByIDs(ctx, ids)
	if err != nil {
		return err
	}
	return tx.Posts().ReplaceTags(ctx, post, tags)
}
