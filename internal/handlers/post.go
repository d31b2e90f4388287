package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"kvartal/internal/metrics"
	"kvartal/internal/middleware"
	"kvartal/internal/models"
	"kvartal/internal/services"
	"kvartal/internal/storage"
	"kvartal/internal/thread"
	"kvartal/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ThreadDepth is how many comment levels the detail page nests before linking
// to the rest of the chain.
const ThreadDepth = 12

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}

// List shows every post, newest first.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := services.ListPosts()
	if err != nil {
		serverError(c, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title": "All posts",
		"Posts": posts,
		"Empty": "No posts yet.",
	})
}

// MyPosts shows the current user's own posts.
func (h *PostHandler) MyPosts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	posts, err := services.ListUserPosts(user.ID)
	if err != nil {
		serverError(c, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title": "My posts",
		"Posts": posts,
		"Empty": "You have not written anything yet.",
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	post, err := services.GetPost(id)
	if err != nil {
		renderLookupError(c, err, "Post")
		return
	}

	comments, err := services.PostThread(post.ID, user.ID)
	if err != nil {
		serverError(c, err)
		return
	}
	metrics.ObserveThread(thread.Count(comments))

	// ?thread=<comment id> shows one reply chain that was cut at ThreadDepth
	var focus *thread.Node
	if raw := c.Query("thread"); raw != "" {
		focusID, ok := utils.ParseID(raw)
		if ok {
			focus = thread.Find(comments, focusID)
		}
		if focus == nil {
			RenderError(c, http.StatusNotFound, "Comment not found")
			return
		}
		comments = []*thread.Node{focus}
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Post":          post,
		"Comments":      comments,
		"Focus":         focus,
		"ThreadDepth":   ThreadDepth,
		"UserLiked":     services.UserLiked(user.ID, post.ID),
		"UserFavorited": services.UserFavorited(user.ID, post.ID),
		"IsAuthor":      post.UserID == user.ID,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/form.html", gin.H{"Action": "/post/create"})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	in, err := postInput(c)
	if err == nil {
		_, err = services.CreatePost(user.ID, in)
	}
	if err != nil {
		if msg, ok := formError(err); ok {
			Render(c, http.StatusBadRequest, "post/form.html", gin.H{
				"Action": "/post/create",
				"Error":  msg,
				"Form":   in,
			})
			return
		}
		serverError(c, err)
		return
	}

	flash(c, FlashSuccess, "Post created")
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.loadOwnPost(c, "You cannot edit this post")
	if !ok {
		return
	}
	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Action": fmt.Sprintf("/post/%d/edit", post.ID),
		"Post":   post,
		"Form":   services.PostInput{Title: post.Title, Content: post.Content},
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.loadOwnPost(c, "You cannot edit this post")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	var updated *models.Post
	in, err := postInput(c)
	if err == nil {
		in.ClearImage = c.PostForm("image-clear") != ""
		updated, err = services.UpdatePost(user.ID, post.ID, in)
	}
	if err != nil {
		if msg, ok := formError(err); ok {
			Render(c, http.StatusBadRequest, "post/form.html", gin.H{
				"Action": c.Request.URL.Path,
				"Post":   post,
				"Error":  msg,
				"Form":   in,
			})
			return
		}
		serverError(c, err)
		return
	}

	flash(c, FlashSuccess, fmt.Sprintf("Post \"%s\" updated", updated.Title))
	c.Redirect(http.StatusFound, postURL(updated.ID))
}

// Delete removes a post on POST. A plain GET only explains how to delete.
func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.loadOwnPost(c, "You cannot delete this post")
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		flash(c, FlashWarning, "Use the delete button on the post page")
		c.Redirect(http.StatusFound, postURL(post.ID))
		return
	}

	user := middleware.CurrentUser(c)
	if err := services.DeletePost(user.ID, post.ID); err != nil {
		serverError(c, err)
		return
	}
	flash(c, FlashSuccess, fmt.Sprintf("Post \"%s\" deleted", post.Title))
	c.Redirect(http.StatusFound, "/")
}

// loadOwnPost fetches the :id post and checks the current user wrote it.
// Strangers get an error flash and are sent home.
func (h *PostHandler) loadOwnPost(c *gin.Context, denied string) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	post, err := services.GetPost(id)
	if err != nil {
		renderLookupError(c, err, "Post")
		return nil, false
	}
	if post.UserID != middleware.CurrentUser(c).ID {
		flash(c, FlashError, denied)
		c.Redirect(http.StatusFound, "/")
		return nil, false
	}
	return post, true
}

func postInput(c *gin.Context) (services.PostInput, error) {
	in := services.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}
	image, err := formImage(c, "image")
	if err != nil {
		return in, err
	}
	in.Image = image
	return in, nil
}

// formError maps validation failures to the message shown above a form.
func formError(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidParent),
		errors.Is(err, storage.ErrNotImage),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrBadExtension):
		return capitalize(err.Error()), true
	case errors.Is(err, multipart.ErrMessageTooLarge):
		return "Upload is too large", true
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

// ToggleLike flips the current user's like and returns to the previous page.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	liked, err := services.ToggleLike(user.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}

	if liked {
		flash(c, FlashInfo, "You liked the post")
	} else {
		flash(c, FlashInfo, "You no longer like the post")
	}
	redirectBack(c, "/")
}
