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

type postFixture struct {
	posts PostService
	tags  TagService
	store repository.Store
	owner *model.User
	other *model.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	store := repository.NewStore(gdb)
	return &postFixture{
		posts: NewPostService(store, metrics.Noop{}),
		tags:  NewTagService(store, metrics.Noop{}),
		store: store,
		owner: testutil.CreateUser(t, gdb, "owner@example.com"),
		other: testutil.CreateUser(t, gdb, "other@example.com"),
	}
}

func (f *postFixture) tag(t *testing.T, name string) *model.Tag {
	t.Helper()
	tag, err := f.tags.CreateTag(context.Background(), name, f.owner.ID)
	require.NoError(t, err)
	return tag
}

func (f *postFixture) post(t *testing.T, title string, tagIDs ...uuid.UUID) *model.Post {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), CreatePostInput{
		Title:   title,
		Content: "Some content long enough",
		OwnerID: f.owner.ID,
		TagIDs:  tagIDs,
	})
	require.NoError(t, err)
	return post
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Name)
	}
	return out
}

func TestPostService_CreateLoadsRelations(t *testing.T) {
	f := newPostFixture(t)
	golang := f.tag(t, "golang")

	post := f.post(t, "Hello World", golang.ID, uuid.New())

	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, f.owner.ID, post.UserID)
	require.NotNil(t, post.User)
	assert.Equal(t, f.owner.Email, post.User.Email)
	assert.Equal(t, []string{"golang"}, tagNames(post.Tags), "unknown tag ids are dropped")
}

func TestPostService_CreateWithoutTags(t *testing.T) {
	f := newPostFixture(t)

	post := f.post(t, "Hello World")

	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)
}

func TestPostService_CreateIgnoresDeletedTags(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	gone := f.tag(t, "gone")
	require.NoError(t, f.tags.DeleteTag(ctx, f.owner.ID, gone.ID))

	post := f.post(t, "Hello World", gone.ID)

	assert.Empty(t, post.Tags)
}

func TestPostService_DeletedTagHiddenButAssociationKept(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	golang := f.tag(t, "golang")
	rust := f.tag(t, "rust")
	post := f.post(t, "Hello World", golang.ID, rust.ID)

	require.NoError(t, f.tags.DeleteTag(ctx, f.owner.ID, rust.ID))

	got, err := f.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, tagNames(got.Tags))

	ids, err := f.store.Posts().AssociatedTagIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{golang.ID, rust.ID}, ids)
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("supplied fields change and others stay", func(t *testing.T) {
		f := newPostFixture(t)
		golang := f.tag(t, "golang")
		post := f.post(t, "Hello World", golang.ID)

		updated, err := f.posts.UpdatePost(ctx, f.owner.ID, post.ID, model.PostPatch{Title: strPtr("New title")})
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, post.Content, updated.Content)
		assert.Equal(t, []string{"golang"}, tagNames(updated.Tags), "absent tag ids leave tags alone")
		assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))
	})

	t.Run("tag ids replace the whole set", func(t *testing.T) {
		f := newPostFixture(t)
		golang := f.tag(t, "golang")
		rust := f.tag(t, "rust")
		post := f.post(t, "Hello World", golang.ID)

		ids := []uuid.UUID{rust.ID}
		updated, err := f.posts.UpdatePost(ctx, f.owner.ID, post.ID, model.PostPatch{TagIDs: &ids})
		require.NoError(t, err)
		assert.Equal(t, []string{"rust"}, tagNames(updated.Tags))
	})

	t.Run("empty tag ids clear the set", func(t *testing.T) {
		f := newPostFixture(t)
		golang := f.tag(t, "golang")
		post := f.post(t, "Hello World", golang.ID)

		empty := []uuid.UUID{}
		updated, err := f.posts.UpdatePost(ctx, f.owner.ID, post.ID, model.PostPatch{TagIDs: &empty})
		require.NoError(t, err)
		assert.NotNil(t, updated.Tags)
		assert.Empty(t, updated.Tags)
	})

	t.Run("non-owner is denied and the post is unchanged", func(t *testing.T) {
		f := newPostFixture(t)
		golang := f.tag(t, "golang")
		post := f.post(t, "Hello World", golang.ID)

		empty := []uuid.UUID{}
		_, err := f.posts.UpdatePost(ctx, f.other.ID, post.ID, model.PostPatch{
			Title:  strPtr("Hijacked title"),
			TagIDs: &empty,
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		got, err := f.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got.Title)
		assert.Equal(t, []string{"golang"}, tagNames(got.Tags))
	})

	t.Run("deleted post is not found", func(t *testing.T) {
		f := newPostFixture(t)
		post := f.post(t, "Hello World")
		require.NoError(t, f.posts.DeletePost(ctx, f.owner.ID, post.ID))

		_, err := f.posts.UpdatePost(ctx, f.owner.ID, post.ID, model.PostPatch{Title: strPtr("Back again")})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostService_Delete(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	golang := f.tag(t, "golang")
	post := f.post(t, "Hello World", golang.ID)

	assert.ErrorIs(t, f.posts.DeletePost(ctx, f.other.ID, post.ID), apperrors.ErrPermissionDenied)
	_, err := f.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePost(ctx, f.owner.ID, post.ID))

	_, err = f.posts.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, f.posts.DeletePost(ctx, f.owner.ID, post.ID), apperrors.ErrNotFound)
	assert.ErrorIs(t, f.posts.DeletePost(ctx, f.owner.ID, uuid.New()), apperrors.ErrNotFound)

	// the tag itself is untouched and the association row survives
	_, err = f.tags.GetTag(ctx, golang.ID)
	require.NoError(t, err)
	ids, err := f.store.Posts().AssociatedTagIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{golang.ID}, ids)
}

func TestPostService_List(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	golang := f.tag(t, "golang")

	var posts []*model.Post
	for _, title := range []string{"Post one", "Post two", "Post three", "Post four", "Post five"} {
		posts = append(posts, f.post(t, title, golang.ID))
	}
	require.NoError(t, f.posts.DeletePost(ctx, f.owner.ID, posts[0].ID))
	require.NoError(t, f.posts.DeletePost(ctx, f.owner.ID, posts[3].ID))

	items, total, err := f.posts.ListPosts(ctx, repository.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Post two", items[0].Title)
	assert.Equal(t, "Post three", items[1].Title)
	for _, item := range items {
		require.NotNil(t, item.User)
		assert.Equal(t, []string{"golang"}, tagNames(item.Tags))
	}

	items, total, err = f.posts.ListPosts(ctx, repository.Page{Number: 5, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, items)

	items, total, err = f.posts.ListPosts(ctx, repository.Page{Number: 1, Size: 10, OnlyDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Post one", items[0].Title)
	assert.Equal(t, "Post four", items[1].Title)

	_, _, err = f.posts.ListPosts(ctx, repository.Page{Number: 1, Size: 0})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
