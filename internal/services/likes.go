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

// ToggleLike likes the post, or takes the like back if userID already liked it.
// It reports whether the post is liked afterwards.
func ToggleLike(userID, postID uint) (bool, error) {
	if err := db.DB.Select("id").First(&models.Post{}, postID).Error; err != nil {
		return false, err
	}

	var like models.Like
	err := db.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	switch {
	case err == nil:
		if err := db.DB.Delete(&like).Error; err != nil {
			return true, fmt.Errorf("unlike post: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.DB.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return false, fmt.Errorf("like post: %w", err)
		}
		return true, nil
	default:
		return false, err
	}
}

// UserLiked reports whether userID likes postID.
func UserLiked(userID, postID uint) bool {
	var count int64
	if err := db.DB.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
		logger.Log.Warn("Failed to check like", zap.Uint("user_id", userID), zap.Uint("post_id", postID), zap.Error(err))
	}
	return count > 0
}

// ToggleCommentLike works like ToggleLike for comments.
func ToggleCommentLike(userID, commentID uint) (bool, error) {
	if err := db.DB.Select("id").First(&models.Comment{}, commentID).Error; err != nil {
		return false, err
	}

	var like models.CommentLike
	err := db.DB.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&like).Error
	switch {
	case err == nil:
		if err := db.DB.Delete(&like).Error; err != nil {
			return true, fmt.Errorf("unlike comment: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.DB.Create(&models.CommentLike{UserID: userID, CommentID: commentID}).Error; err != nil {
			return false, fmt.Errorf("like comment: %w", err)
		}
		return true, nil
	default:
		return false, err
	}
}
