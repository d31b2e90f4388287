package handlers

import (
	"net/http"
	"net/url"

	"kvartal/internal/middleware"
	"kvartal/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// View shows a user's profile, creating an empty one on first visit.
func (h *ProfileHandler) View(c *gin.Context) {
	owner, err := services.GetUserByUsername(c.Param("username"))
	if err != nil {
		renderLookupError(c, err, "User")
		return
	}
	profile, err := services.GetOrCreateProfile(owner.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	Render(c, http.StatusOK, "profile/view.html", gin.H{
		"ProfileUser": owner,
		"Profile":     profile,
		"IsOwn":       owner.ID == middleware.CurrentUser(c).ID,
	})
}

func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profile, err := services.GetOrCreateProfile(user.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	form := services.ProfileInput{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Bio:       profile.Bio,
	}
	if profile.BirthDate != nil {
		form.BirthDate = profile.BirthDate.Format("2006-01-02")
	}
	Render(c, http.StatusOK, "profile/edit.html", gin.H{"Profile": profile, "Form": form})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	in := services.ProfileInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Bio:       c.PostForm("bio"),
		BirthDate: c.PostForm("birth_date"),
	}

	avatar, err := formImage(c, "avatar")
	if err == nil {
		in.Avatar = avatar
		_, err = services.UpdateProfile(user.ID, in)
	}
	if err != nil {
		msg, ok := formError(err)
		if !ok {
			serverError(c, err)
			return
		}
		profile, perr := services.GetOrCreateProfile(user.ID)
		if perr != nil {
			serverError(c, perr)
			return
		}
		Render(c, http.StatusBadRequest, "profile/edit.html", gin.H{
			"Profile": profile,
			"Form":    in,
			"Error":   msg,
		})
		return
	}

	flash(c, FlashSuccess, "Profile updated")
	c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(user.Username))
}
