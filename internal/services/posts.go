package services

import (
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/logger"
	"kvartal/internal/models"
	"kvartal/internal/storage"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Media stores uploaded images. main replaces it with one rooted at the configured media dir.
var Media = storage.NewImageStore("media", 10<<20)

// PostInput is the editable part of a post. A nil Image keeps the current one
// unless ClearImage is set.
type PostInput struct {
	Title      string
	Content    string
	Image      *multipart.FileHeader
	ClearImage bool
}

func (in PostInput) validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > 200 {
		return fmt.Errorf("title longer than 200 characters: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ListPosts returns every post, newest first.
func ListPosts() ([]models.Post, error) {
	return listPosts(db.DB)
}

// ListUserPosts returns the posts written by userID, newest first.
func ListUserPosts(userID uint) ([]models.Post, error) {
	return listPosts(db.DB.Where("user_id = ?", userID))
}

func listPosts(q *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	if err := q.Preload("User").Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := fillPostCounts(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost loads one post with its author and counters.
func GetPost(id uint) (*models.Post, error) {
	var post models.Post
	if err := db.DB.Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	one := []models.Post{post}
	if err := fillPostCounts(one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

type postCount struct {
	PostID uint
	N      int
}

// fillPostCounts loads like and comment counts for a page of posts in two queries.
func fillPostCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var likes, comments []postCount
	if err := db.DB.Model(&models.Like{}).Select("post_id, count(*) as n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&likes).Error; err != nil {
		return fmt.Errorf("count likes: %w", err)
	}
	if err := db.DB.Model(&models.Comment{}).Select("post_id, count(*) as n").
		Where("post_id IN ?", ids).Group("post_id").Scan(&comments).Error; err != nil {
		return fmt.Errorf("count comments: %w", err)
	}

	likeBy := make(map[uint]int, len(likes))
	for _, r := range likes {
		likeBy[r.PostID] = r.N
	}
	commentBy := make(map[uint]int, len(comments))
	for _, r := range comments {
		commentBy[r.PostID] = r.N
	}
	for i := range posts {
		posts[i].LikeCount = likeBy[posts[i].ID]
		posts[i].CommentCount = commentBy[posts[i].ID]
	}
	return nil
}

// CreatePost stores a new post by userID.
func CreatePost(userID uint, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:  userID,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
	}
	if in.Image != nil {
		rel, err := Media.SaveUpload(in.Image, storage.PostImagesDir, 0)
		if err != nil {
			return nil, err
		}
		post.Image = rel
	}

	if err := db.DB.Create(&post).Error; err != nil {
		removeImage(post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// UpdatePost edits a post. Only its author may do so. A replaced or cleared
// image is removed from disk.
func UpdatePost(userID, postID uint, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotAuthor
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	oldImage := post.Image
	switch {
	case in.Image != nil:
		rel, err := Media.SaveUpload(in.Image, storage.PostImagesDir, 0)
		if err != nil {
			return nil, err
		}
		post.Image = rel
	case in.ClearImage:
		post.Image = ""
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	if err := db.DB.Save(&post).Error; err != nil {
		if post.Image != oldImage {
			removeImage(post.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if post.Image != oldImage {
		removeImage(oldImage)
	}
	return &post, nil
}

// DeletePost removes a post with its likes, comments and favorites, then its image.
func DeletePost(userID, postID uint) error {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthor
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	removeImage(post.Image)
	return nil
}

func removeImage(rel string) {
	if err := Media.Remove(rel); err != nil {
		logger.Log.Warn("Failed to remove image", zap.String("path", rel), zap.Error(err))
	}
}
