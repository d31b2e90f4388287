package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kvartal/internal/middleware"
	"kvartal/internal/models"
	"kvartal/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct{}

func NewMessageHandler() *MessageHandler {
	return &MessageHandler{}
}

func conversationURL(id uint) string {
	return fmt.Sprintf("/messages/%d", id)
}

// List shows the contact list and, when :recipient_id is given, the
// conversation with that user. Opening a conversation marks it read.
func (h *MessageHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var selected *models.User
	var conversation []models.Message
	if c.Param("recipient_id") != "" {
		id, ok := paramID(c, "recipient_id")
		if !ok {
			return
		}
		other, err := services.GetUser(id)
		if err != nil {
			renderLookupError(c, err, "User")
			return
		}
		selected = other

		conversation, err = services.Conversation(user.ID, other.ID)
		if err != nil && !errors.Is(err, services.ErrNotContact) {
			serverError(c, err)
			return
		}
	}

	// after Conversation so freshly read messages no longer count
	contacts, err := services.Contacts(user.ID)
	if err != nil {
		serverError(c, err)
		return
	}
	unread := services.UnreadCount(user.ID)
	c.Set(middleware.UnreadCountKey, unread)

	Render(c, http.StatusOK, "message/list.html", gin.H{
		"Contacts":          contacts,
		"SelectedRecipient": selected,
		"Conversation":      conversation,
	})
}

// Send delivers a message. A GET just opens the conversation.
func (h *MessageHandler) Send(c *gin.Context) {
	id, ok := paramID(c, "recipient_id")
	if !ok {
		return
	}
	recipient, err := services.GetUser(id)
	if err != nil {
		renderLookupError(c, err, "User")
		return
	}
	if c.Request.Method != http.MethodPost {
		c.Redirect(http.StatusFound, conversationURL(recipient.ID))
		return
	}

	user := middleware.CurrentUser(c)
	_, err = services.SendMessage(user.ID, recipient.ID, c.PostForm("subject"), c.PostForm("content"))
	switch {
	case err == nil:
		flash(c, FlashSuccess, fmt.Sprintf("Message to %s sent", recipient.Username))
	case errors.Is(err, services.ErrEmptyContent), errors.Is(err, services.ErrInvalidInput):
		flash(c, FlashError, capitalize(err.Error()))
	default:
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, conversationURL(recipient.ID))
}
