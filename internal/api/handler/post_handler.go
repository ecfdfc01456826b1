package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/devconnector-api/internal/core/ports"
)

// PostHandler serves the post aggregate. Every route requires a token.
type PostHandler struct {
	posts ports.PostService
}

func NewPostHandler(posts ports.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create handles POST /api/posts.
//
// @Summary      Publish a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      textRequest  true  "Post text"
// @Success      200   {object}  domain.Post
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req textRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.posts.Create(c.Request().Context(), userID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /api/posts, newest first.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Success      200  {array}   domain.Post
// @Router       /api/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	ps, err := h.posts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ps)
}

// Get handles GET /api/posts/:id.
//
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  domain.Post
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	p, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/posts/:id. Only the author may delete.
//
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "post removed"})
}

// Like handles PUT /api/posts/like/:id and returns the new likes.
//
// @Summary      Like a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {array}   domain.Like
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/posts/like/{id} [put]
func (h *PostHandler) Like(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	likes, err := h.posts.Like(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likes)
}

// Unlike handles PUT /api/posts/unlike/:id and returns the remaining likes.
//
// @Summary      Unlike a post
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {array}   domain.Like
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/posts/unlike/{id} [put]
func (h *PostHandler) Unlike(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	likes, err := h.posts.Unlike(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likes)
}

// AddComment handles POST /api/posts/comment/:id.
//
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id    path      string       true  "Post id"
// @Param        body  body      textRequest  true  "Comment text"
// @Success      200   {array}   domain.Comment
// @Failure      400   {object}  validationErrorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/posts/comment/{id} [post]
func (h *PostHandler) AddComment(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req textRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comments, err := h.posts.AddComment(c.Request().Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id.
//
// @Summary      Delete a comment
// @Tags         posts
// @Produce      json
// @Security     TokenAuth
// @Param        id          path      string  true  "Post id"
// @Param        comment_id  path      string  true  "Comment id"
// @Success      200         {array}   domain.Comment
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /api/posts/comment/{id}/{comment_id} [delete]
func (h *PostHandler) DeleteComment(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	comments, err := h.posts.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("comment_id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}
