package handlers

import (
	"encoding/gob"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"

	"kvartal/internal/logger"
	"kvartal/internal/middleware"
	"kvartal/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Flash levels, rendered as alert classes by the base layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
	FlashWarning = "warning"
)

var flashLevels = []string{FlashSuccess, FlashError, FlashInfo, FlashWarning}

func init() {
	// flashes are kept as []interface{} in the cookie session
	gob.Register([]interface{}{})
}

// Flash is one queued message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	obj["Flashes"] = takeFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// flash queues a message in the session for the next page.
func flash(c *gin.Context, level, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, level)
	if err := session.Save(); err != nil {
		logger.Log.Warn("Failed to save flash", zap.Error(err))
	}
}

func takeFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var out []Flash
	for _, level := range flashLevels {
		for _, f := range session.Flashes(level) {
			if msg, ok := f.(string); ok {
				out = append(out, Flash{Level: level, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(); err != nil {
			logger.Log.Warn("Failed to clear flashes", zap.Error(err))
		}
	}
	return out
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

// renderLookupError turns a failed load into a 404 page, or a 500 for anything
// other than a missing row.
func renderLookupError(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RenderError(c, http.StatusNotFound, what+" not found")
		return
	}
	serverError(c, err)
}

func serverError(c *gin.Context, err error) {
	logger.Log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later")
}

// redirectBack returns to the page the request came from when it is on this
// site, else to fallback.
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref := c.Request.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == c.Request.Host) {
			target = u.RequestURI()
		}
	}
	c.Redirect(http.StatusFound, target)
}

// paramID reads a positive numeric path parameter, answering 404 when it is malformed.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
	}
	return id, ok
}

// formImage returns the uploaded file under field, or nil when none was sent.
func formImage(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size == 0 && fh.Filename == "" {
		return nil, nil
	}
	return fh, nil
}
