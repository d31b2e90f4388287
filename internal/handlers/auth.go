package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kvartal/internal/middleware"
	"kvartal/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		captchaService: services.NewCaptchaService(),
	}
}

// renderRegister serves the form with a fresh captcha question.
func (h *AuthHandler) renderRegister(c *gin.Context, code int, data gin.H) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(services.CaptchaSessionKey, answer)
	session.Save()

	if data == nil {
		data = gin.H{}
	}
	data["Captcha"] = question
	Render(c, code, "auth/register.html", data)
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password1")
	confirm := c.PostForm("password2")
	form := gin.H{"Username": username}

	// Validate Captcha
	session := sessions.Default(c)
	expected := session.Get(services.CaptchaSessionKey)
	session.Delete(services.CaptchaSessionKey)
	session.Save()
	if !services.CheckAnswer(expected, c.PostForm("captcha")) {
		form["Error"] = "Wrong answer to the security question"
		h.renderRegister(c, http.StatusBadRequest, form)
		return
	}

	user, err := services.Register(username, password, confirm)
	if err != nil {
		code := http.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			code = http.StatusConflict
			form["Error"] = err.Error()
		case errors.Is(err, services.ErrPasswordMismatch), errors.Is(err, services.ErrPasswordTooShort):
			form["Error"] = err.Error()
		case errors.Is(err, services.ErrInvalidInput):
			form["Error"] = "Enter a valid username of at most 150 characters"
		default:
			serverError(c, err)
			return
		}
		h.renderRegister(c, code, form)
		return
	}

	flash(c, FlashSuccess, fmt.Sprintf("Account %s created", user.Username))
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := services.Authenticate(username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Error":    "Wrong username or password",
			"Username": username,
		})
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}
