package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kvartal/internal/middleware"
	"kvartal/internal/models"
	"kvartal/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FavoriteHandler struct{}

func NewFavoriteHandler() *FavoriteHandler {
	return &FavoriteHandler{}
}

// List shows the current user's favorites, most recently added first.
func (h *FavoriteHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	favs, err := services.ListFavorites(user.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	posts := make([]models.Post, len(favs))
	for i := range favs {
		posts[i] = favs[i].Post
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title": "Favorites",
		"Posts": posts,
		"Empty": "Nothing in your favorites yet.",
	})
}

// Toggle 切换收藏状态 - 收藏/取消收藏
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	added, err := services.ToggleFavorite(user.ID, id)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrOwnPost):
		flash(c, FlashError, "You cannot add your own post to favorites")
		redirectBack(c, "/")
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	default:
		serverError(c, err)
		return
	}

	post, err := services.GetPost(id)
	if err != nil {
		serverError(c, err)
		return
	}
	if added {
		flash(c, FlashInfo, fmt.Sprintf("Post \"%s\" added to favorites", post.Title))
	} else {
		flash(c, FlashInfo, fmt.Sprintf("Post \"%s\" removed from favorites", post.Title))
	}
	redirectBack(c, "/")
}
