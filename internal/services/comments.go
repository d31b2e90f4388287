package services

import (
	"errors"
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/models"
	"kvartal/internal/thread"
	"strings"

	"gorm.io/gorm"
)

// ListComments returns the comments of a post oldest first, with authors, like
// counts and whether viewerID liked each one. Pass 0 for an anonymous viewer.
func ListComments(postID, viewerID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if err := fillCommentLikes(comments, viewerID); err != nil {
		return nil, err
	}
	return comments, nil
}

type commentCount struct {
	CommentID uint
	N         int
}

func fillCommentLikes(comments []models.Comment, viewerID uint) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}

	var counts []commentCount
	if err := db.DB.Model(&models.CommentLike{}).Select("comment_id, count(*) as n").
		Where("comment_id IN ?", ids).Group("comment_id").Scan(&counts).Error; err != nil {
		return fmt.Errorf("count comment likes: %w", err)
	}
	byID := make(map[uint]int, len(counts))
	for _, r := range counts {
		byID[r.CommentID] = r.N
	}

	liked := make(map[uint]bool)
	if viewerID != 0 {
		var mine []uint
		if err := db.DB.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, ids).
			Pluck("comment_id", &mine).Error; err != nil {
			return fmt.Errorf("load comment likes: %w", err)
		}
		for _, id := range mine {
			liked[id] = true
		}
	}

	for i := range comments {
		comments[i].LikeCount = byID[comments[i].ID]
		comments[i].Liked = liked[comments[i].ID]
	}
	return nil
}

// PostThread loads the comments of a post and arranges them into reply trees.
func PostThread(postID, viewerID uint) ([]*thread.Node, error) {
	comments, err := ListComments(postID, viewerID)
	if err != nil {
		return nil, err
	}
	return thread.Build(comments), nil
}

// AddComment posts a comment, or a reply when parentID is set. The parent must
// belong to the same post.
func AddComment(userID, postID uint, content string, parentID *uint) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if err := db.DB.Select("id").First(&models.Post{}, postID).Error; err != nil {
		return nil, err
	}

	if parentID != nil {
		var parent models.Comment
		err := db.DB.Select("id", "post_id").First(&parent, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.PostID != postID) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes a comment and every reply beneath it. Only the author
// may delete. It returns the post the comment belonged to.
func DeleteComment(userID, commentID uint) (uint, error) {
	var target models.Comment
	if err := db.DB.First(&target, commentID).Error; err != nil {
		return 0, err
	}
	if target.UserID != userID {
		return target.PostID, ErrNotAuthor
	}

	var all []models.Comment
	if err := db.DB.Select("id", "parent_id", "created_at").
		Where("post_id = ?", target.PostID).
		Order("created_at ASC, id ASC").
		Find(&all).Error; err != nil {
		return target.PostID, fmt.Errorf("load thread: %w", err)
	}

	var ids []uint
	thread.Walk(thread.Find(thread.Build(all), target.ID), func(n *thread.Node) bool {
		ids = append(ids, n.Comment.ID)
		return true
	})
	if len(ids) == 0 {
		ids = []uint{target.ID}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return target.PostID, fmt.Errorf("delete comment: %w", err)
	}
	return target.PostID, nil
}
