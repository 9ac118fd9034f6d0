package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogapi/internal/model"
	"blogapi/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a new post. Tag ids that do not name an active tag are ignored.
type CreatePostRequest struct {
	Title   string      `json:"title" validate:"required,min=5,max=255"`
	Content string      `json:"content" validate:"required,min=10"`
	Tags    []uuid.UUID `json:"tags"`
}

// UpdatePostRequest carries the fields to change. A present tags list replaces the tag set; an empty one clears it.
type UpdatePostRequest struct {
	Title   *string      `json:"title" validate:"omitnil,min=5,max=255"`
	Content *string      `json:"content" validate:"omitnil,min=10"`
	Tags    *[]uuid.UUID `json:"tags"`
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		OwnerID: user.ID,
		TagIDs:  req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// List godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Param size query int false "Page size" default(10) minimum(1) maximum(100)
// @Param only_deleted query bool false "List soft-deleted posts instead" default(false)
// @Success 200 {object} Paginated[model.Post]
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	q := defaultPageQuery()
	if err := bind(c, &q); err != nil {
		return err
	}

	posts, total, err := h.postService.ListPosts(c.Request().Context(), q.toPage())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Paginated[model.Post]{Items: posts, Total: total})
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Update godoc
// @Summary Update a post
// @Description Only the author may update a post. PATCH behaves the same as PUT.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), user.ID, id, model.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		TagIDs:  req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Soft-delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
