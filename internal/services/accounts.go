package services

import (
	"errors"
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/models"
	"kvartal/internal/utils"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

const MinPasswordLength = 8

// Register creates an account after checking the username and both password fields.
func Register(username, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > 150 {
		return nil, fmt.Errorf("username: %w", ErrInvalidInput)
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := db.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, Password: hash}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user matching the credentials.
func Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := db.DB.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByUsername loads a user by exact username.
func GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser loads a user by id.
func GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account, oldest first.
func ListUsers() ([]models.User, error) {
	var users []models.User
	err := db.DB.Order("id ASC").Find(&users).Error
	return users, err
}
