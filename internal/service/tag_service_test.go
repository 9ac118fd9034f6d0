package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/metrics"
	"blogapi/internal/model"
	"blogapi/internal/repository"
	"blogapi/internal/testutil"
)

func strPtr(s string) *string { return &s }

func newTagFixture(t *testing.T) (TagService, *model.User, *model.User) {
	t.Helper()
	gdb := testutil.NewDB(t)
	owner := testutil.CreateUser(t, gdb, "owner@example.com")
	other := testutil.CreateUser(t, gdb, "other@example.com")
	return NewTagService(repository.NewStore(gdb), metrics.Noop{}), owner, other
}

func TestTagService_CreateAndGet(t *testing.T) {
	svc, owner, _ := newTagFixture(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "golang", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, tag.UserID)
	assert.False(t, tag.IsDeleted)

	got, err := svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang", got.Name)

	_, err = svc.GetTag(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTagService_DuplicateNameConflicts(t *testing.T) {
	svc, owner, other := newTagFixture(t)
	ctx := context.Background()

	first, err := svc.CreateTag(ctx, "golang", owner.ID)
	require.NoError(t, err)

	_, err = svc.CreateTag(ctx, "golang", other.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.EqualError(t, err, "Tag with this name already exists")

	second, err := svc.CreateTag(ctx, "rust", owner.ID)
	require.NoError(t, err)
	_, err = svc.UpdateTag(ctx, owner.ID, second.ID, model.TagPatch{Name: strPtr("golang")})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// names stay reserved after a soft delete
	require.NoError(t, svc.DeleteTag(ctx, owner.ID, first.ID))
	_, err = svc.CreateTag(ctx, "golang", owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTagService_Update(t *testing.T) {
	svc, owner, other := newTagFixture(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "golang", owner.ID)
	require.NoError(t, err)

	t.Run("owner renames", func(t *testing.T) {
		updated, err := svc.UpdateTag(ctx, owner.ID, tag.ID, model.TagPatch{Name: strPtr("go")})
		require.NoError(t, err)
		assert.Equal(t, "go", updated.Name)
		assert.True(t, updated.UpdatedAt.After(tag.UpdatedAt))
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		updated, err := svc.UpdateTag(ctx, owner.ID, tag.ID, model.TagPatch{})
		require.NoError(t, err)
		assert.Equal(t, "go", updated.Name)
	})

	t.Run("non-owner is denied and the tag is unchanged", func(t *testing.T) {
		_, err := svc.UpdateTag(ctx, other.ID, tag.ID, model.TagPatch{Name: strPtr("hijacked")})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		got, err := svc.GetTag(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "go", got.Name)
	})

	t.Run("missing tag is not found before ownership is checked", func(t *testing.T) {
		_, err := svc.UpdateTag(ctx, other.ID, uuid.New(), model.TagPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestTagService_Delete(t *testing.T) {
	svc, owner, other := newTagFixture(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "golang", owner.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteTag(ctx, other.ID, tag.ID), apperrors.ErrPermissionDenied)
	_, err = svc.GetTag(ctx, tag.ID)
	require.NoError(t, err, "a denied delete leaves the tag visible")

	require.NoError(t, svc.DeleteTag(ctx, owner.ID, tag.ID))

	_, err = svc.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTag(ctx, owner.ID, tag.ID), apperrors.ErrNotFound)
	_, err = svc.UpdateTag(ctx, owner.ID, tag.ID, model.TagPatch{Name: strPtr("again")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTagService_List(t *testing.T) {
	svc, owner, _ := newTagFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"a", "b", "c", "d"} {
		tag, err := svc.CreateTag(ctx, name, owner.ID)
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}
	require.NoError(t, svc.DeleteTag(ctx, owner.ID, ids[2]))

	tags, total, err := svc.ListTags(ctx, repository.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].Name)
	assert.Equal(t, "b", tags[1].Name)

	tags, total, err = svc.ListTags(ctx, repository.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, tags, 1)
	assert.Equal(t, "d", tags[0].Name)

	tags, total, err = svc.ListTags(ctx, repository.Page{Number: 1, Size: 10, OnlyDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tags, 1)
	assert.Equal(t, "c", tags[0].Name)

	_, _, err = svc.ListTags(ctx, repository.Page{Number: 0, Size: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, _, err = svc.ListTags(ctx, repository.Page{Number: 1, Size: 101})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
