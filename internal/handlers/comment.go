package handlers

import (
	"errors"
	"net/http"

	"kvartal/internal/middleware"
	"kvartal/internal/services"
	"kvartal/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create adds a comment or, with parent_id set, a reply.
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	parentID, ok := utils.OptionalID(c.PostForm("parent_id"))
	if !ok {
		flash(c, FlashError, "Reply target does not belong to this post")
		c.Redirect(http.StatusFound, postURL(postID))
		return
	}

	_, err := services.AddComment(user.ID, postID, c.PostForm("content"), parentID)
	switch {
	case err == nil:
		flash(c, FlashSuccess, "Comment added")
	case errors.Is(err, gorm.ErrRecordNotFound):
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	case errors.Is(err, services.ErrEmptyContent), errors.Is(err, services.ErrInvalidParent):
		flash(c, FlashError, capitalize(err.Error()))
	default:
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(postID))
}

func (h *CommentHandler) ToggleLike(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	if _, err := services.ToggleCommentLike(user.ID, id); err != nil {
		renderLookupError(c, err, "Comment")
		return
	}
	redirectBack(c, "/")
}

// Delete removes a comment together with its replies.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	postID, err := services.DeleteComment(user.ID, id)
	switch {
	case err == nil:
		flash(c, FlashSuccess, "Comment deleted")
	case errors.Is(err, services.ErrNotAuthor):
		flash(c, FlashError, "You cannot delete this comment")
	default:
		renderLookupError(c, err, "Comment")
		return
	}
	c.Redirect(http.StatusFound, postURL(postID))
}
