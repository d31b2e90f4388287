package services

import (
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/models"
	"kvartal/internal/storage"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"
)

const birthDateLayout = "2006-01-02"

// ProfileInput carries the fields of the profile form. An empty BirthDate
// clears the date; a nil Avatar keeps the current picture.
type ProfileInput struct {
	FirstName string
	LastName  string
	Bio       string
	BirthDate string
	Avatar    *multipart.FileHeader
}

// GetOrCreateProfile returns the profile of userID, creating an empty one on first access.
func GetOrCreateProfile(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := db.DB.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile saves the profile form. A new avatar is shrunk to fit 300x300
// and replaces the old file.
func UpdateProfile(userID uint, in ProfileInput) (*models.UserProfile, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if utf8.RuneCountInString(first) > 30 || utf8.RuneCountInString(last) > 30 {
		return nil, fmt.Errorf("name longer than 30 characters: %w", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Bio) > 500 {
		return nil, fmt.Errorf("bio longer than 500 characters: %w", ErrInvalidInput)
	}

	var birth *time.Time
	if s := strings.TrimSpace(in.BirthDate); s != "" {
		t, err := time.Parse(birthDateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("birth date %q: %w", s, ErrInvalidInput)
		}
		birth = &t
	}

	profile, err := GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}

	oldAvatar := profile.Avatar
	if in.Avatar != nil {
		rel, err := Media.SaveUpload(in.Avatar, storage.AvatarsDir, storage.AvatarMaxSide)
		if err != nil {
			return nil, err
		}
		profile.Avatar = rel
	}

	profile.FirstName = first
	profile.LastName = last
	profile.Bio = in.Bio
	profile.BirthDate = birth
	if err := db.DB.Save(profile).Error; err != nil {
		if profile.Avatar != oldAvatar {
			removeImage(profile.Avatar)
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if profile.Avatar != oldAvatar {
		removeImage(oldAvatar)
	}
	return profile, nil
}
