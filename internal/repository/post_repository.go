package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogapi/internal/model"
)

// PostRepository defines post persistence operations. Reads always load the author and the
// post's active tags; association rows pointing at deleted tags are skipped, not removed.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Update(ctx context.Context, post *model.Post, patch Patch[*model.Post]) error
	SoftDelete(ctx context.Context, post *model.Post) error
	ListPaginated(ctx context.Context, page Page) ([]model.Post, int64, error)
	// ReplaceTags makes tags the post's complete tag set.
	ReplaceTags(ctx context.Context, post *model.Post, tags []model.Tag) error
	// AssociatedTagIDs lists every tag id in the join table for the post, deleted tags included.
	AssociatedTagIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
}

type postRepository struct {
	db   *gorm.DB
	crud *CRUD[model.Post, *model.Post]
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, crud: NewCRUD[model.Post](db, "post")}
}

// withRelations eagerly loads the author and the active tags.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("name ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.crud.Create(ctx, post)
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := r.crud.GetByID(ctx, id, withRelations)
	if err != nil {
		return nil, err
	}
	normalizeTags(post)
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post, patch Patch[*model.Post]) error {
	return r.crud.Update(ctx, post, patch)
}

func (r *postRepository) SoftDelete(ctx context.Context, post *model.Post) error {
	return r.crud.SoftDelete(ctx, post)
}

func (r *postRepository) ListPaginated(ctx context.Context, page Page) ([]model.Post, int64, error) {
	posts, total, err := r.crud.ListPaginated(ctx, page, withRelations)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		normalizeTags(&posts[i])
	}
	return posts, total, nil
}

// ReplaceTags rewrites the join rows for the post inside the caller's session.
func (r *postRepository) ReplaceTags(ctx context.Context, post *model.Post, tags []model.Tag) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", post.ID).Delete(&model.PostTag{}).Error; err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	if len(tags) > 0 {
		rows := make([]model.PostTag, 0, len(tags))
		for _, tag := range tags {
			rows = append(rows, model.PostTag{PostID: post.ID, TagID: tag.ID})
		}
		if err := db.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert post tags: %w", err)
		}
	}
	post.Tags = tags
	normalizeTags(post)
	return nil
}

func (r *postRepository) AssociatedTagIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var rows []model.PostTag
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TagID)
	}
	return ids, nil
}

// normalizeTags guarantees an empty list rather than null in responses.
func normalizeTags(post *model.Post) {
	if post.Tags == nil {
		post.Tags = []model.Tag{}
	}
}
