package services

import (
	"errors"
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/logger"
	"kvartal/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToggleFavorite adds the post to userID's favorites or removes it again.
// Authors cannot favorite their own posts.
func ToggleFavorite(userID, postID uint) (bool, error) {
	var post models.Post
	if err := db.DB.Select("id", "user_id").First(&post, postID).Error; err != nil {
		return false, err
	}
	if post.UserID == userID {
		return false, ErrOwnPost
	}

	var fav models.Favorite
	err := db.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&fav).Error
	switch {
	case err == nil:
		if err := db.DB.Delete(&fav).Error; err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.DB.Create(&models.Favorite{UserID: userID, PostID: postID}).Error; err != nil {
			return false, fmt.Errorf("add favorite: %w", err)
		}
		return true, nil
	default:
		return false, err
	}
}

// UserFavorited reports whether postID is among userID's favorites.
func UserFavorited(userID, postID uint) bool {
	var count int64
	if err := db.DB.Model(&models.Favorite{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
		logger.Log.Warn("Failed to check favorite", zap.Uint("user_id", userID), zap.Uint("post_id", postID), zap.Error(err))
	}
	return count > 0
}

// ListFavorites returns userID's favorites, most recently added first.
func ListFavorites(userID uint) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := db.DB.Preload("Post").Preload("Post.User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}
