package services

import (
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/logger"
	"kvartal/internal/models"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Contact is someone the user has exchanged at least one message with.
type Contact struct {
	User          models.User
	UnreadCount   int
	LastMessageAt time.Time
}

// Contacts lists everyone userID has written to or heard from, most recent
// conversation first, with the number of unread messages from each.
func Contacts(userID uint) ([]Contact, error) {
	var msgs []models.Message
	err := db.DB.Select("sender_id", "recipient_id", "timestamp", "is_read").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	byUser := make(map[uint]*Contact)
	for _, m := range msgs {
		other := m.SenderID
		if other == userID {
			other = m.RecipientID
		}
		c, ok := byUser[other]
		if !ok {
			c = &Contact{}
			byUser[other] = c
		}
		if m.Timestamp.After(c.LastMessageAt) {
			c.LastMessageAt = m.Timestamp
		}
		if m.RecipientID == userID && m.SenderID == other && !m.IsRead {
			c.UnreadCount++
		}
	}
	if len(byUser) == 0 {
		return []Contact{}, nil
	}

	ids := make([]uint, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	var users []models.User
	if err := db.DB.Preload("Profile").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	contacts := make([]Contact, 0, len(users))
	for _, u := range users {
		c := byUser[u.ID]
		c.User = u
		contacts = append(contacts, *c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		if !contacts[i].LastMessageAt.Equal(contacts[j].LastMessageAt) {
			return contacts[i].LastMessageAt.After(contacts[j].LastMessageAt)
		}
		return contacts[i].User.ID < contacts[j].User.ID
	})
	return contacts, nil
}

// IsContact reports whether the two users have exchanged any message.
func IsContact(userID, otherID uint) (bool, error) {
	var count int64
	if err := db.DB.Model(&models.Message{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check contact: %w", err)
	}
	return count > 0, nil
}

// Conversation returns the messages between two users, oldest first, after
// marking those addressed to userID as read. It fails with ErrNotContact when
// they never wrote to each other.
func Conversation(userID, otherID uint) ([]models.Message, error) {
	ok, err := IsContact(userID, otherID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotContact
	}

	if err := db.DB.Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", userID, otherID, false).
		Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	var msgs []models.Message
	err = db.DB.Preload("Sender").Preload("Sender.Profile").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return msgs, nil
}

// SendMessage delivers a message to recipientID.
func SendMessage(senderID, recipientID uint, subject, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if len([]rune(subject)) > 200 {
		return nil, fmt.Errorf("subject longer than 200 characters: %w", ErrInvalidInput)
	}
	if _, err := GetUser(recipientID); err != nil {
		return nil, err
	}

	msg := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     strings.TrimSpace(subject),
		Content:     content,
	}
	if err := db.DB.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// UnreadCount is the number of unread messages addressed to userID.
func UnreadCount(userID uint) int64 {
	var count int64
	if err := db.DB.Model(&models.Message{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&count).Error; err != nil {
		logger.Log.Warn("Failed to count unread messages", zap.Uint("user_id", userID), zap.Error(err))
	}
	return count
}
