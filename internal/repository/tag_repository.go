package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogapi/internal/model"
)

// TagRepository defines tag persistence operations.
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tag, error)
	Update(ctx context.Context, tag *model.Tag, patch Patch[*model.Tag]) error
	SoftDelete(ctx context.Context, tag *model.Tag) error
	ListPaginated(ctx context.Context, page Page) ([]model.Tag, int64, error)
	// FindActiveByIDs returns the non-deleted tags among ids. Unknown ids are ignored.
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Tag, error)
}

type tagRepository struct {
	db   *gorm.DB
	crud *CRUD[model.Tag, *model.Tag]
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db, crud: NewCRUD[model.Tag](db, "tag")}
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.crud.Create(ctx, tag)
}

func (r *tagRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tag, error) {
	return r.crud.GetByID(ctx, id)
}

func (r *tagRepository) Update(ctx context.Context, tag *model.Tag, patch Patch[*model.Tag]) error {
	return r.crud.Update(ctx, tag, patch)
}

func (r *tagRepository) SoftDelete(ctx context.Context, tag *model.Tag) error {
	return r.crud.SoftDelete(ctx, tag)
}

func (r *tagRepository) ListPaginated(ctx context.Context, page Page) ([]model.Tag, int64, error) {
	return r.crud.ListPaginated(ctx, page)
}

func (r *tagRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Tag, error) {
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).
		Where("entity_id IN ? AND is_deleted = ?", ids, false).
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
