package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "blogapi/internal/errors"
)

const (
	// MaxPageSize is the largest page a list call may request.
	MaxPageSize = 100
	// DefaultPageSize is used when the caller does not ask for a size.
	DefaultPageSize = 10
	// MaxPageNumber keeps Offset from overflowing int at the largest page size.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Entity is what the soft-delete engine needs from a model: an id and a soft-delete flag.
// Timestamps are maintained by GORM through the embedded model.Timestamps.
type Entity interface {
	EntityID() uuid.UUID
	Deleted() bool
	MarkDeleted(at time.Time)
}

// Patch applies the supplied optional fields to an entity and returns the columns it touched.
type Patch[PT any] interface {
	Apply(PT) []string
}

// Scope narrows or enriches a query, e.g. to preload relations.
type Scope = func(*gorm.DB) *gorm.DB

// Page selects one page of a soft-delete filtered listing.
type Page struct {
	Number      int
	Size        int
	OnlyDeleted bool
}

// Offset is the number of matching rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Valid reports whether the page is within the accepted bounds.
func (p Page) Valid() bool {
	return p.Number >= 1 && p.Number <= MaxPageNumber && p.Size >= 1 && p.Size <= MaxPageSize
}

// CRUD is the soft-delete aware persistence engine shared by posts and tags.
// Rows are never removed: deletes set is_deleted/deleted_at and lookups ignore deleted rows.
type CRUD[T any, PT interface {
	*T
	Entity
}] struct {
	db   *gorm.DB
	name string
}

// NewCRUD binds the engine to a connection or transaction. name is used in NotFound messages.
func NewCRUD[T any, PT interface {
	*T
	Entity
}](db *gorm.DB, name string) *CRUD[T, PT] {
	return &CRUD[T, PT]{db: db, name: name}
}

// Create inserts a new row. Relations are not written.
func (r *CRUD[T, PT]) Create(ctx context.Context, entity PT) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error)
}

// GetByID returns the live row with the given id. Missing and soft-deleted rows both yield NotFound.
func (r *CRUD[T, PT]) GetByID(ctx context.Context, id uuid.UUID, scopes ...Scope) (PT, error) {
	var (
		entity T
		zero   PT
	)
	err := r.db.WithContext(ctx).
		Scopes(scopes...).
		Where("entity_id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, apperrors.NotFound(r.name + " not found")
		}
		return zero, err
	}
	return PT(&entity), nil
}

// Update writes only the fields carried by patch and refreshes updated_at.
func (r *CRUD[T, PT]) Update(ctx context.Context, entity PT, patch Patch[PT]) error {
	cols := append(patch.Apply(entity), "updated_at")
	return translate(r.db.WithContext(ctx).
		Model(entity).
		Select(cols).
		Omit(clause.Associations).
		Updates(entity).Error)
}

// SoftDelete flags the row as deleted. Calling it twice just rewrites the flag.
func (r *CRUD[T, PT]) SoftDelete(ctx context.Context, entity PT) error {
	entity.MarkDeleted(r.db.NowFunc())
	return r.db.WithContext(ctx).
		Model(entity).
		Select(softDeleteColumns).
		Omit(clause.Associations).
		Updates(entity).Error
}

// ListPaginated returns one page of rows whose is_deleted equals page.OnlyDeleted, ordered by
// created_at then entity_id, and the number of rows matching the same filter.
func (r *CRUD[T, PT]) ListPaginated(ctx context.Context, page Page, scopes ...Scope) ([]T, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(new(T)).
		Where("is_deleted = ?", page.OnlyDeleted).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, page.Size)
	if err := r.db.WithContext(ctx).
		Scopes(scopes...).
		Where("is_deleted = ?", page.OnlyDeleted).
		Order("created_at ASC").
		Order("entity_id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var softDeleteColumns = []string{"is_deleted", "deleted_at", "updated_at"}

// translate turns driver unique-constraint violations into Conflict errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("resource already exists")
	}
	return err
}
