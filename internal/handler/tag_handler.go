package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogapi/internal/model"
	"blogapi/internal/service"
)

// TagHandler handles tag endpoints.
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// CreateTagRequest represents a new tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateTagRequest carries an optional new name.
type UpdateTagRequest struct {
	Name *string `json:"name" validate:"omitnil,min=1,max=100"`
}

// Create godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTagRequest true "Tag"
// @Success 201 {object} model.Tag
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tags [post]
func (h *TagHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreateTagRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tag, err := h.tagService.CreateTag(c.Request().Context(), req.Name, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

// List godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Param size query int false "Page size" default(10) minimum(1) maximum(100)
// @Param only_deleted query bool false "List soft-deleted tags instead" default(false)
// @Success 200 {object} Paginated[model.Tag]
// @Failure 400 {object} errors.ErrorResponse
// @Router /tags [get]
func (h *TagHandler) List(c echo.Context) error {
	q := defaultPageQuery()
	if err := bind(c, &q); err != nil {
		return err
	}

	tags, total, err := h.tagService.ListTags(c.Request().Context(), q.toPage())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Paginated[model.Tag]{Items: tags, Total: total})
}

// Get godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} model.Tag
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{id} [get]
func (h *TagHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	tag, err := h.tagService.GetTag(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// Update godoc
// @Summary Rename a tag
// @Description Only the creator may rename a tag. PATCH behaves the same as PUT.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Param request body UpdateTagRequest true "Fields to change"
// @Success 200 {object} model.Tag
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tags/{id} [put]
func (h *TagHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateTagRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tag, err := h.tagService.UpdateTag(c.Request().Context(), user.ID, id, model.TagPatch{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// Delete godoc
// @Summary Soft-delete a tag
// @Description Posts keep their association to the tag but stop listing it.
// @Tags tags
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{id} [delete]
func (h *TagHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.tagService.DeleteTag(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
